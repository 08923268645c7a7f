// Package conditions scores weather observations for fishing and ranks
// alternative spots by that score.
package conditions

// Weather is a current-conditions observation. Units: °C, km/h, %, mm.
// The JSON layout follows the OpenWeatherMap current weather response.
type Weather struct {
	Main       MainReading  `json:"main"`
	Wind       WindReading  `json:"wind"`
	Clouds     CloudReading `json:"clouds"`
	Rain       *RainReading `json:"rain,omitempty"`
	Conditions []Condition  `json:"weather"`
}

type MainReading struct {
	Temp float64 `json:"temp"`
}

type WindReading struct {
	Speed float64 `json:"speed"`
}

type CloudReading struct {
	All float64 `json:"all"`
}

type RainReading struct {
	OneHour float64 `json:"1h"`
}

// Condition is a weather event code with its description.
// 2xx thunderstorm, 3xx-6xx drizzle/rain/snow, 800 clear, 801-809 clouds.
type Condition struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Precipitation returns the last hour of rain, 0 when absent.
func (w *Weather) Precipitation() float64 {
	if w.Rain == nil {
		return 0
	}
	return w.Rain.OneHour
}

// Code returns the primary weather event code, 0 when absent.
func (w *Weather) Code() int {
	if len(w.Conditions) == 0 {
		return 0
	}
	return w.Conditions[0].ID
}

func (w *Weather) Description() string {
	if len(w.Conditions) == 0 {
		return ""
	}
	return w.Conditions[0].Description
}

// IsStorm reports a thunderstorm event code.
func IsStorm(code int) bool {
	return code >= 200 && code < 300
}

const (
	MinScore      = 0
	MaxScore      = 10
	baselineScore = 5
)

const (
	RatingExcellent        = "excellent"
	RatingGood             = "good"
	RatingAverage          = "average"
	RatingPoor             = "poor"
	RatingDiscouraged      = "discouraged"
	RatingInsufficientData = "insufficient data"
)

// Details echoes the inputs the score was computed from.
type Details struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"wind_speed"`
	CloudCover    float64 `json:"cloud_cover"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weather_code"`
	Description   string  `json:"description"`
}

type Evaluation struct {
	Score          int      `json:"score"`
	Recommendation string   `json:"recommendation"`
	Summary        string   `json:"summary"`
	Details        *Details `json:"details,omitempty"`
}

// Evaluate scores weather for fishing on a 0-10 scale. A nil observation
// or an empty fish type list yields a zero score with an
// "insufficient data" recommendation; it never fails.
//
// fishTypes is only checked for presence. The score does not depend on
// which fish live at the spot.
func Evaluate(w *Weather, fishTypes []string) Evaluation {
	if w == nil || len(fishTypes) == 0 {
		return Evaluation{
			Score:          0,
			Recommendation: RatingInsufficientData,
			Summary:        "Not enough data to evaluate fishing conditions.",
		}
	}

	score := clamp(baselineScore + adjustments(w))
	rating := ratingFor(score)
	return Evaluation{
		Score:          score,
		Recommendation: rating,
		Summary:        summaries[rating],
		Details: &Details{
			Temperature:   w.Main.Temp,
			WindSpeed:     w.Wind.Speed,
			CloudCover:    w.Clouds.All,
			Precipitation: w.Precipitation(),
			WeatherCode:   w.Code(),
			Description:   w.Description(),
		},
	}
}

// Score is Evaluate(...).Score.
func Score(w *Weather, fishTypes []string) int {
	return Evaluate(w, fishTypes).Score
}

func adjustments(w *Weather) int {
	delta := 0

	switch t := w.Main.Temp; {
	case t < 5:
		delta -= 2
	case t > 30:
		delta -= 2
	case t >= 15 && t <= 25:
		delta += 2
	}

	switch s := w.Wind.Speed; {
	case s > 30:
		delta -= 3
	case s > 20:
		delta -= 2
	case s < 5:
		delta++
	}

	switch c := w.Clouds.All; {
	case c >= 30 && c <= 70:
		delta++
	case c > 90:
		delta--
	}

	switch p := w.Precipitation(); {
	case p > 5:
		delta -= 2
	case p > 0 && p <= 2:
		delta++
	}

	if IsStorm(w.Code()) {
		delta -= 3
	}
	return delta
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func ratingFor(score int) string {
	switch {
	case score >= 8:
		return RatingExcellent
	case score >= 6:
		return RatingGood
	case score >= 4:
		return RatingAverage
	case score >= 2:
		return RatingPoor
	}
	return RatingDiscouraged
}

var summaries = map[string]string{
	RatingExcellent:   "Excellent conditions for fishing. Get out there!",
	RatingGood:        "Good conditions for fishing.",
	RatingAverage:     "Average conditions. Fish may be less active.",
	RatingPoor:        "Poor conditions. Expect a slow day.",
	RatingDiscouraged: "Fishing is not recommended right now.",
}
