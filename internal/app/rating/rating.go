package rating

import (
	"math"

	"eventmarket-backend/internal/app/ds"
)

// Summary агрегированный рейтинг поставщика: общая оценка,
// количество отзывов и разбивка по четырём под-оценкам.
type Summary struct {
	Overall         float64 `json:"overall"`
	Count           int     `json:"count"`
	Quality         float64 `json:"quality"`
	Communication   float64 `json:"communication"`
	Value           float64 `json:"value"`
	Professionalism float64 `json:"professionalism"`
}

// Aggregate считает средние по строкам отзывов. Без отзывов все оценки 0.0.
// Результат не зависит от порядка строк: суммы целых точны в float64,
// деление и округление выполняются один раз на поле.
func Aggregate(reviews []ds.Review) Summary {
	if len(reviews) == 0 {
		return Summary{}
	}

	var overall, quality, communication, value, professionalism int
	for _, r := range reviews {
		overall += r.Rating
		quality += r.Quality
		communication += r.Communication
		value += r.Value
		professionalism += r.Professionalism
	}

	n := float64(len(reviews))
	return Summary{
		Overall:         round1(float64(overall) / n),
		Count:           len(reviews),
		Quality:         round1(float64(quality) / n),
		Communication:   round1(float64(communication) / n),
		Value:           round1(float64(value) / n),
		Professionalism: round1(float64(professionalism) / n),
	}
}

// round1 округляет до одного знака после запятой (половина вверх)
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
