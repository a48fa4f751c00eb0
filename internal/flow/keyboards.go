package flow

import "github.com/RomaniumSSS/My-first-project/internal/models"

// Button tags. Transports carry these back on EventButton; tags are stable
// identifiers while labels are presentation only.
const (
	tagMenuGoal    = "menu_new_goal"
	tagMenuCheckin = "menu_checkin"
	tagMenuReflect = "menu_reflect"
	tagMenuCrisis  = "menu_crisis"
	tagMenuBack    = "menu_back"

	tagGoalSkip = "goal_skip"

	tagCheckinGoal = "checkin_goal"

	tagReflectSkip     = "reflect_skip"
	tagReflectCancel   = "reflect_cancel"
	tagReflectBreathe  = "reflect_breathe"
	tagReflectSaveStep = "reflect_save_step"
	tagReflectDone     = "reflect_done"

	tagCrisisBreathe   = "crisis_breathe"
	tagCrisisTalk      = "crisis_talk"
	tagCrisisJustBe    = "crisis_just_be"
	tagCrisisMicro     = "crisis_micro"
	tagCrisisMicroTry  = "crisis_micro_try"
	tagCrisisMicroSkip = "crisis_micro_skip"
	tagCrisisExitYes   = "crisis_exit_yes"
	tagCrisisExitNo    = "crisis_exit_no"

	tagBreath478    = "breath_478"
	tagBreathBox    = "breath_box"
	tagBreathRepeat = "breath_repeat"
	tagBreathDone   = "breath_done"
)

func menuKeyboard(hasGoals bool) []models.Button {
	buttons := []models.Button{
		{Label: "🎯 Новая цель", Tag: tagMenuGoal},
	}
	if hasGoals {
		buttons = append(buttons, models.Button{Label: "✅ Чек-ин", Tag: tagMenuCheckin})
	}
	buttons = append(buttons,
		models.Button{Label: "🧘 Рефлексия", Tag: tagMenuReflect},
		models.Button{Label: "🆘 Кризис", Tag: tagMenuCrisis},
	)
	return buttons
}

func backToMenuKeyboard() []models.Button {
	return []models.Button{{Label: "📋 Меню", Tag: tagMenuBack}}
}

func goalSkipKeyboard() []models.Button {
	return []models.Button{{Label: "⏭ Пропустить", Tag: tagGoalSkip}}
}

func checkinGoalsKeyboard(goals []models.Goal) []models.Button {
	buttons := make([]models.Button, 0, len(goals))
	for _, g := range goals {
		buttons = append(buttons, models.Button{Label: g.Title, Tag: tagCheckinGoal, Payload: g.ID})
	}
	return buttons
}

func reflectSkipKeyboard() []models.Button {
	return []models.Button{
		{Label: "⏭ Пропустить", Tag: tagReflectSkip},
		{Label: "❌ Прервать", Tag: tagReflectCancel},
	}
}

func postReflectKeyboard() []models.Button {
	return []models.Button{
		{Label: "🌬 Подышать", Tag: tagReflectBreathe},
		{Label: "🎯 Записать шаг", Tag: tagReflectSaveStep},
		{Label: "✅ Готово", Tag: tagReflectDone},
	}
}

func crisisMenuKeyboard() []models.Button {
	return []models.Button{
		{Label: "🌬 Подышать", Tag: tagCrisisBreathe},
		{Label: "💬 Написать", Tag: tagCrisisTalk},
		{Label: "🤫 Просто побыть", Tag: tagCrisisJustBe},
	}
}

func postBreathingKeyboard() []models.Button {
	return []models.Button{
		{Label: "🎯 Микро-действие", Tag: tagCrisisMicro},
		{Label: "🤫 Просто побыть", Tag: tagCrisisJustBe},
	}
}

func breathingChoiceKeyboard() []models.Button {
	return []models.Button{
		{Label: "🌬 4-7-8 (глубокое)", Tag: tagBreath478},
		{Label: "⬜ Box 4-4-4-4 (простое)", Tag: tagBreathBox},
	}
}

func breathingRepeatKeyboard() []models.Button {
	return []models.Button{
		{Label: "🔄 Повторить", Tag: tagBreathRepeat},
		{Label: "✅ Достаточно", Tag: tagBreathDone},
	}
}

func microActionKeyboard() []models.Button {
	return []models.Button{
		{Label: "🎯 Хочу попробовать", Tag: tagCrisisMicroTry},
		{Label: "🛋 Не сейчас", Tag: tagCrisisMicroSkip},
	}
}

func exitCrisisKeyboard() []models.Button {
	return []models.Button{
		{Label: "✅ Да, переключить", Tag: tagCrisisExitYes},
		{Label: "🔴 Нет, пока в кризисе", Tag: tagCrisisExitNo},
	}
}
