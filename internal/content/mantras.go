// Package content provides the static coaching content: supportive mantras
// and the mood-matched animation catalogue.
package content

import "math/rand/v2"

// MantraCategory selects a themed set of supportive one-liners.
type MantraCategory string

const (
	MantraCrisis      MantraCategory = "crisis"
	MantraBreathing   MantraCategory = "breathing"
	MantraMicroAction MantraCategory = "micro_action"
	MantraReflect     MantraCategory = "reflect"
	MantraExit        MantraCategory = "exit"
)

var mantras = map[MantraCategory][]string{
	MantraCrisis: {
		"Тебе тяжело, и это нормально.",
		"Не нужно быть сильным прямо сейчас.",
		"Ты не один. Я рядом.",
		"Сегодня можно просто быть.",
	},
	MantraBreathing: {
		"Дыхание — это якорь. Ты уже здесь.",
		"С каждым выдохом становится чуть легче.",
		"Тело знает, как успокоиться. Дай ему время.",
	},
	MantraMicroAction: {
		"Маленький шаг — это всё равно шаг.",
		"Ты сделал больше, чем ничего. Это важно.",
		"Прогресс не обязан быть большим.",
	},
	MantraReflect: {
		"Честные ответы — уже работа над собой.",
		"Замечать своё состояние — это навык.",
	},
	MantraExit: {
		"Ты справился с трудным моментом.",
		"Возвращайся в своём темпе.",
		"Каждый день — новая попытка.",
	},
}

// RandomMantra returns a random mantra from the category, or "" for an
// unknown category.
func RandomMantra(category MantraCategory) string {
	list := mantras[category]
	if len(list) == 0 {
		return ""
	}
	return list[rand.IntN(len(list))]
}
