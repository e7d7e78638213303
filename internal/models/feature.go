package models

// FeatureCount is the fixed dimensionality of the regressor input.
const FeatureCount = 13

// FeatureNames lists the model features in the exact order the regressor was
// trained with. The predictor must always be queried in this order.
var FeatureNames = []string{
	"pts_last5", "pts_last10", "pts_std_5", "season_pts_avg",
	"min_last5", "min_last10", "minutes_trend",
	"fga_last5", "fga_last10", "fga_trend",
	"home_flag", "rest_days", "back_to_back",
}

// FeatureVector holds the derived model inputs for one game. All rolling and
// trend values are computed over the date-ascending, duplicate-free history
// ending at (and including) that game.
type FeatureVector struct {
	PtsLast5     float64 `json:"pts_last5"`
	PtsLast10    float64 `json:"pts_last10"`
	PtsStd5      float64 `json:"pts_std_5"`
	SeasonPtsAvg float64 `json:"season_pts_avg"`
	MinLast5     float64 `json:"min_last5"`
	MinLast10    float64 `json:"min_last10"`
	MinutesTrend float64 `json:"minutes_trend"`
	FgaLast5     float64 `json:"fga_last5"`
	FgaLast10    float64 `json:"fga_last10"`
	FgaTrend     float64 `json:"fga_trend"`
	HomeFlag     float64 `json:"home_flag"`
	RestDays     float64 `json:"rest_days"`
	BackToBack   float64 `json:"back_to_back"`
}

// Values returns the vector in the documented feature order.
func (f *FeatureVector) Values() []float64 {
	return []float64{
		f.PtsLast5, f.PtsLast10, f.PtsStd5, f.SeasonPtsAvg,
		f.MinLast5, f.MinLast10, f.MinutesTrend,
		f.FgaLast5, f.FgaLast10, f.FgaTrend,
		f.HomeFlag, f.RestDays, f.BackToBack,
	}
}

// FeatureRow pairs a game with its derived feature vector. The same-game
// points total is the regression target when the row is used for training.
type FeatureRow struct {
	Game     GameRecord    `json:"game"`
	Features FeatureVector `json:"features"`
}

// Target returns the regression target for a training row.
func (r *FeatureRow) Target() float64 {
	return r.Game.Points
}
