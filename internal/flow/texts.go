package flow

// User-facing message texts. The bot speaks Russian; texts follow the
// low-pressure tone of the product.
const (
	textNeedStart      = "Сначала нужно познакомиться! Нажми /start"
	textUnknownCommand = "Не знаю такую команду. Попробуй /menu"
	textIdleHint       = "Я тут! Нажми /menu, чтобы выбрать действие."

	textGreetNewFmt       = "Привет, %s! Я твой AI-коуч.\nДавай познакомимся. Как мне тебя называть?"
	textGreetReturningFmt = "С возвращением, %s! 👋\n\nВыбери, что хочешь сделать:"
	textMenuFmt           = "📋 Главное меню\n\nПривет, %s! Выбери действие:"

	textOnboardingNameFmt = "Приятно познакомиться, %s!\n\n" +
		"Какая у тебя сейчас главная цель? " +
		"(Напиши кратко, например: 'Выучить английский' или 'Похудеть на 5 кг')"
	textOnboardingDone = "Отличная цель! Я сохранил её.\n\n" +
		"Теперь ты можешь:\n" +
		"1. Добавить детали к цели через /new_goal\n" +
		"2. Сделать чек-ин через /checkin"
	textOnboardingMainGoalDescFmt = "Главная цель: %s"

	textGoalAskTitle       = "Давай поставим новую цель! Как она звучит? (Заголовок)"
	textGoalAskDescription = "Хорошо. Теперь опиши подробнее: почему это важно? " +
		"Как ты поймешь, что цель достигнута?"
	textGoalAskPhoto = "Есть ли картинка, которая тебя вдохновляет на эту цель? (Мудборд)\n" +
		"Пришли фото или нажми /skip, если нет."
	textGoalPhotoFailed = "Ошибка при обработке фото. Попробуем без него."
	textGoalProcessing  = "Анализирую твою цель и готовлю план действий..."
	textGoalSavedFmt    = "Цель '%s' успешно сохранена!"
	textGoalLostTitle   = "Произошла ошибка: заголовок цели не найден. " +
		"Попробуй создать цель заново через /new_goal"
	textGoalSaveFailed = "Не получилось сохранить цель. Попробуй ещё раз через /new_goal"

	textCheckinNoGoals      = "У тебя пока нет активных целей. Создай новую через /new_goal"
	textCheckinPickGoal     = "Выбери цель для отчета:"
	textCheckinPickButton   = "Выбери цель кнопкой 👇"
	textCheckinBadGoal      = "Цель не найдена или у вас нет прав. Попробуй выбрать заново через /checkin"
	textCheckinAskReportFmt = "Отлично! Как успехи с целью «%s»?\n\n" +
		"Напиши отчет текстом или пришли фото (можно с подписью)."
	textCheckinPhotoFailed  = "Не удалось загрузить фото. Пожалуйста, отправь отчет текстом."
	textCheckinLostGoal     = "Что-то пошло не так. Начни чек-ин заново через /checkin"
	textCheckinProcessing   = "Анализирую твой отчет... 🧠"
	textCheckinSavedFmt     = "✅ Записано!\n\n%s"
	textCheckinPhotoCaption = "[Фото отчет]"
	textCheckinSaveFailed   = "Не получилось сохранить отчет. Попробуй ещё раз через /checkin"

	textReflectIntro = "🧘 Сессия рефлексии\n\n" +
		"Сейчас я задам тебе несколько вопросов, чтобы лучше понять, " +
		"как ты себя чувствуешь и что тебе нужно.\n\n" +
		"Отвечай честно — это только для тебя.\n\n" +
		"Можешь пропустить любой вопрос, если не хочешь отвечать."
	textReflectProcessingFmt = "🧠 Анализирую твои ответы...\n\n%s"
	textReflectResultFmt     = "🧘 Результаты рефлексии\n\n%s"
	textReflectAIFailed      = "😔 Не получилось проанализировать сейчас.\n\n" +
		"Но само то, что ты ответил на эти вопросы — уже шаг.\n\n" +
		"Хочешь подышать или записать свой шаг?"
	textReflectCancelled = "❌ Сессия прервана.\n\nКогда будешь готов — напиши /reflect снова."
	textReflectStepFmt   = "🎯 Твой шаг на сегодня:\n\n%s\n\nЯ верю в тебя! 💪"
	textReflectStepEmpty = "🎯 Напиши свой шаг — что ты сделаешь сегодня?"
	textReflectDoneFmt   = "✅ Сессия завершена.\n\n%s\n\nВозвращайся когда захочешь!"

	textCrisisEnter      = "Я рядом. Ничего не нужно делать прямо сейчас.\n\nКак ты хочешь?"
	textCrisisGuard      = "Режим кризиса не активен. Используй /crisis чтобы войти."
	textCrisisFeelingFmt = "Спасибо, что поделился. 💙\n\n%s\n\n" +
		"Хочешь подышать или сделать что-то маленькое?"
	textCrisisTalk = "💬 Напиши, что чувствуешь. Я просто послушаю.\n\n" +
		"Не нужно объяснять или оправдываться. Просто выпусти это наружу."
	textCrisisJustBeFmt    = "🤫 Я тут. Напиши, когда будешь готов.\n\n%s"
	textCrisisJustBeingFmt = "Я тут. 💙\n\n%s\n\nГотов к чему-то или ещё побудем?"
	textCrisisMicroGoalFmt = "Если есть силы — можешь сделать одно маленькое действие.\n" +
		"Буквально 5-15 минут. Что угодно в сторону цели.\n\n" +
		"Твоя цель: %s\n\n" +
		"Примеры:\n" +
		"• Написать одну идею\n" +
		"• Задать один вопрос\n" +
		"• Сделать один маленький шаг"
	textCrisisMicroNoGoal = "Если есть силы — можешь сделать одно маленькое действие.\n" +
		"Буквально 5-15 минут. Что угодно полезное для себя.\n\n" +
		"Примеры:\n" +
		"• Выпить воды\n" +
		"• Открыть окно\n" +
		"• Записать одну мысль"
	textCrisisMicroNudgeGoalFmt = "Твоя цель: %s\n\nХочешь попробовать сделать что-то маленькое?"
	textCrisisMicroNudge        = "Хочешь попробовать сделать что-то маленькое?"
	textCrisisMicroTry          = "🎯 Отлично! Сделай что-нибудь маленькое и напиши мне, когда закончишь.\n\n" +
		"Не торопись. Хоть 5 минут, хоть 15. Любой прогресс важен."
	textCrisisMicroSkipFmt   = "Это тоже ок. Я тут, если что. 💙\n\n%s"
	textCrisisMicroReportFmt = "💙 Ты молодец!\n\n%s\n\n" +
		"Хочешь ещё что-то сделать или достаточно на сегодня?"
	textCrisisExitAsk     = "Переключить на обычный режим?"
	textCrisisAlreadyNorm = "Ты уже в обычном режиме. 👍"
	textCrisisExitYesFmt  = "✅ Переключил на обычный режим.\n\n%s\n\n" +
		"Используй /new_goal или /checkin когда будешь готов."
	textCrisisExitNo = "Хорошо, остаёмся в режиме поддержки. 💙\n\nЯ тут, если что."

	textBreathingChoose    = "🌬 Выбери технику дыхания:"
	textBreathingStart478  = "🌬 Давай подышим вместе.\n\nТехника 4-7-8:"
	textBreathingStartBox  = "⬜ Давай подышим вместе.\n\nBox Breathing 4-4-4-4:"
	textBreathingRepeat    = "🌬 Ещё один цикл..."
	textBreathingDoneFmt   = "✨ Отлично.\n\n%s\n\nЕщё раз?"
	textBreathingReflected = "✨ Отлично.\n\n%s"
	textBreathingAfterFmt  = "💙 Как теперь?\n\n%s\n\n" +
		"Хочешь сделать одно маленькое действие или просто побыть?"

	textInhale4 = "🌬 Вдох... (4 секунды)"
	textHold7   = "⏸ Задержи... (7 секунд)"
	textHold4   = "⏸ Задержи... (4 секунды)"
	textExhale8 = "💨 Выдох... (8 секунд)"
	textExhale4 = "💨 Выдох... (4 секунды)"
)

// reflectQuestions holds the reflection session questions in order.
var reflectQuestions = []string{
	"💭 Как ты сейчас себя чувствуешь?\n\nОпиши одним-двумя словами или фразой.",
	"📊 Оцени своё состояние от 1 до 10.\n\n(1 — совсем плохо, 10 — отлично)",
	"🔄 Что бы тебе хотелось изменить прямо сейчас?",
	"🧱 Что сейчас мешает тебе двигаться вперёд?",
	"✨ Когда последний раз ты чувствовал, что у тебя получается?",
	"🔑 Что тебе помогло тогда?",
	"👣 Какой один маленький шаг ты можешь сделать сегодня?",
}

// reflectAnswerLabels are the labels used when formatting answers for the AI.
var reflectAnswerLabels = []string{
	"Как себя чувствует",
	"Оценка состояния (1-10)",
	"Что хочет изменить",
	"Что мешает двигаться",
	"Когда последний раз получалось",
	"Что помогло тогда",
	"Маленький шаг на сегодня",
}

// fallbackName is used in greetings when the user's name is unknown.
const fallbackName = "друг"
