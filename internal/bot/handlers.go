package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordquest/internal/excel"
	"github.com/example/wordquest/internal/quest"
	"github.com/example/wordquest/internal/translate"
	"github.com/example/wordquest/internal/words"
	"github.com/example/wordquest/pkg/models"
)

// Constants for callback data
const (
	callbackMenu       = "menu"
	callbackStats      = "stats"
	callbackWords      = "words"
	callbackLists      = "lists"
	callbackImport     = "import"
	callbackQuestStart = "quest:start"
	callbackQuestExit  = "quest:exit"
	callbackCardsStart = "cards:start"
	callbackCardsFlip  = "cards:flip"
	callbackCardsNext  = "cards:next"
	callbackCardsExit  = "cards:exit"
	callbackListNew    = "lists:new"

	prefixQuestOption = "quest:opt:" // quest:opt:<item>:<option>
	prefixWordDelete  = "words:del:" // words:del:<word id>
	prefixListSelect  = "lists:sel:" // lists:sel:<list id>
	prefixListDelete  = "lists:del:" // lists:del:<list id>
)

// menuRow leads back to the main menu
var menuRow = []MenuButton{{Text: "⬅️ Меню", CallbackData: callbackMenu}}

// MainMenuButtons returns the buttons for the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎯 Квест", CallbackData: callbackQuestStart},
			{Text: "🃏 Карточки", CallbackData: callbackCardsStart},
		},
		{
			{Text: "📖 Слова", CallbackData: callbackWords},
			{Text: "🗂 Списки", CallbackData: callbackLists},
		},
		{
			{Text: "📥 Импорт", CallbackData: callbackImport},
			{Text: "📊 Статистика", CallbackData: callbackStats},
		},
	}
}

// handleMessage routes commands, uploaded files and plain text
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	l, err := b.learnerFor(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to load learner", "chat_id", chatID, "error", err)
		b.sendText(chatID, "⚠️ Не удалось загрузить твои данные, попробуй позже.")
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, l, message)
		return
	}
	if message.Document != nil {
		b.importDocument(ctx, l, message.Document)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	if state, ok := l.engine.State(); ok {
		switch state.Step {
		case quest.StepSpelling:
			b.spell(ctx, l, text)
			return
		case quest.StepChoice:
			b.sendText(chatID, "Выбери вариант кнопкой или заверши квест: /stop")
			return
		}
	}

	switch l.currentMode() {
	case inputImport:
		l.setInputMode(inputWord)
		b.bulkImport(ctx, l, text)
	case inputListName:
		l.setInputMode(inputWord)
		b.createList(ctx, l, text)
	default:
		b.addWord(ctx, l, text)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, l *learner, message *tgbotapi.Message) {
	args := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case "start":
		b.handleStart(l)
	case "help":
		b.handleHelp(l)
	case "add":
		if args == "" {
			l.setInputMode(inputWord)
			b.sendText(l.chatID, "Напиши английское слово, я найду перевод.")
			return
		}
		b.addWord(ctx, l, args)
	case "import":
		if args == "" {
			b.promptImport(l)
			return
		}
		b.bulkImport(ctx, l, args)
	case "words":
		b.showWords(l, 0)
	case "lists":
		b.showLists(l, 0)
	case "cards":
		b.startCards(l)
	case "quest":
		b.startQuest(l)
	case "stop":
		b.stop(l)
	case "stats":
		b.showStats(l)
	case "remind":
		b.remind(ctx, l)
	default:
		msg := tgbotapi.NewMessage(l.chatID, "Неизвестная команда. Список команд: /help")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		b.sendMessage(msg)
	}
}

func (b *Bot) handleStart(l *learner) {
	text := "👋 Привет! Я помогу выучить английские слова.\n\n" +
		"Пришли мне английское слово, и я добавлю его в список вместе с переводом. " +
		"Потом проверь себя в квесте: сначала выбери перевод, затем напиши его сам.\n\n" +
		"Справка: /help"
	msg := tgbotapi.NewMessage(l.chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	b.sendMessage(msg)
}

func (b *Bot) handleHelp(l *learner) {
	text := "📖 Команды\n\n" +
		"/add <слово> - добавить слово (или просто пришли его)\n" +
		"/import - добавить много слов: текстом через запятую или строками, либо файлом .xlsx, .csv, .txt\n" +
		"/words - слова активного списка\n" +
		"/lists - списки слов\n" +
		"/cards - карточки для повторения\n" +
		"/quest - квест по активному списку\n" +
		"/stop - остановить квест или карточки\n" +
		"/stats - серия дней и прогресс\n" +
		"/remind - проверить, не пора ли позаниматься\n\n" +
		fmt.Sprintf("Слово считается выученным после %d правильных ответов в квесте.", models.MasteryThreshold)
	msg := tgbotapi.NewMessage(l.chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	b.sendMessage(msg)
}

func (b *Bot) promptImport(l *learner) {
	l.setInputMode(inputImport)
	b.sendText(l.chatID, "Пришли слова через запятую или каждое с новой строки. "+
		"Можно прислать файл .xlsx (слова в колонке A), .csv или .txt.")
}

func (b *Bot) addWord(ctx context.Context, l *learner, text string) {
	list := l.store.ActiveList()
	entry, err := l.store.AddWord(ctx, list.ID, text)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	b.sendText(l.chatID, fmt.Sprintf("➕ %s - %s\nСписок «%s»", entry.English, entry.Russian, list.Name))
}

func (b *Bot) bulkImport(ctx context.Context, l *learner, text string) {
	list := l.store.ActiveList()
	b.sendText(l.chatID, "⏳ Перевожу слова, это может занять время...")

	result, err := l.store.BulkAddWords(ctx, list.ID, text)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	msg := tgbotapi.NewMessage(l.chatID, fmt.Sprintf("📥 Импорт в «%s» завершён.\nДобавлено: %d\nПропущено: %d",
		list.Name, result.Imported, result.Skipped))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "📖 Слова", CallbackData: callbackWords}, {Text: "🎯 Квест", CallbackData: callbackQuestStart}},
	})
	b.sendMessage(msg)
}

func (b *Bot) importDocument(ctx context.Context, l *learner, doc *tgbotapi.Document) {
	l.setInputMode(inputWord)
	if doc.FileSize > excel.MaxFileSize {
		b.sendText(l.chatID, "Файл слишком большой.")
		return
	}

	body, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("failed to download import file", "chat_id", l.chatID, "file", doc.FileName, "error", err)
		b.sendText(l.chatID, "⚠️ Не удалось скачать файл, попробуй ещё раз.")
		return
	}
	defer body.Close()

	tokens, err := excel.Extract(doc.FileName, body, excel.DefaultImportConfig())
	if err != nil {
		b.logger.Warn("failed to read import file", "chat_id", l.chatID, "file", doc.FileName, "error", err)
		b.sendText(l.chatID, "⚠️ Не получилось прочитать файл. Поддерживаются .xlsx, .csv и .txt.")
		return
	}
	b.bulkImport(ctx, l, excel.Text(tokens))
}

func (b *Bot) createList(ctx context.Context, l *learner, name string) {
	list, err := l.store.CreateList(ctx, name)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	b.sendText(l.chatID, fmt.Sprintf("🗂 Список «%s» создан и выбран. Пришли слова, чтобы его наполнить.", list.Name))
}

func (b *Bot) stop(l *learner) {
	_, running := l.engine.State()
	l.engine.Exit()
	l.setDeck(nil)
	l.setInputMode(inputWord)

	text := "Нечего останавливать."
	if running {
		text = "Квест остановлен."
	}
	msg := tgbotapi.NewMessage(l.chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	b.sendMessage(msg)
}

func (b *Bot) showStats(l *learner) {
	p := l.tracker.Progress()
	list := l.store.ActiveList()
	text := fmt.Sprintf("📊 Статистика\n\n🔥 Серия: %d дн.\n✅ Правильных ответов: %d\n🏅 Выучено: %d из %d (список «%s»)",
		p.Streak, p.TotalCorrect, l.store.MasteredCount(list.ID), len(list.Words), list.Name)
	msg := tgbotapi.NewMessage(l.chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	b.sendMessage(msg)
}

// remind runs the streak reminder check for this chat right away
func (b *Bot) remind(ctx context.Context, l *learner) {
	if b.reminder == nil {
		b.sendText(l.chatID, "Напоминания отключены.")
		return
	}
	sent, err := b.reminder.RunManualCheck(ctx, l.chatID)
	if err != nil {
		b.logger.Error("manual reminder check failed", "chat_id", l.chatID, "error", err)
		b.sendText(l.chatID, "⚠️ Не удалось проверить серию, попробуй позже.")
		return
	}
	if !sent {
		b.sendText(l.chatID, fmt.Sprintf("Серии ничего не грозит. Напоминание приходит в %02d:00, если вчера ты занимался, а сегодня ещё нет.",
			b.reminder.Hour()))
	}
}

// send delivers text and buttons, editing messageID in place when it is set
func (b *Bot) send(chatID int64, messageID int, text string, buttons [][]MenuButton) {
	markup := createKeyboard(buttons)
	if messageID != 0 {
		b.sendMessage(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup))
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = markup
	}
	b.sendMessage(msg)
}

func hasWord(list models.WordList, wordID string) bool {
	for _, w := range list.Words {
		if w.ID == wordID {
			return true
		}
	}
	return false
}

func masteryStars(w models.WordEntry) string {
	filled := w.MasteryCount
	if filled > models.MasteryThreshold {
		filled = models.MasteryThreshold
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", models.MasteryThreshold-filled)
}

func (b *Bot) showWords(l *learner, messageID int) {
	list := l.store.ActiveList()
	if len(list.Words) == 0 {
		b.send(l.chatID, messageID, fmt.Sprintf("Список «%s» пуст. Пришли английское слово, чтобы добавить его.", list.Name),
			[][]MenuButton{menuRow})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 «%s»: %d сл., выучено %d\n\n", list.Name, len(list.Words), l.store.MasteredCount(list.ID))
	shown := list.Words
	if len(shown) > b.config.MaxWordsShown {
		shown = shown[:b.config.MaxWordsShown]
	}

	var buttons [][]MenuButton
	var row []MenuButton
	for _, w := range shown {
		fmt.Fprintf(&sb, "%s %s - %s\n", masteryStars(w), w.English, w.Russian)
		row = append(row, MenuButton{Text: "🗑 " + w.English, CallbackData: prefixWordDelete + w.ID})
		if len(row) == 2 {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		buttons = append(buttons, row)
	}
	if hidden := len(list.Words) - len(shown); hidden > 0 {
		fmt.Fprintf(&sb, "\n...и ещё %d", hidden)
	}
	b.send(l.chatID, messageID, sb.String(), append(buttons, menuRow))
}

func (b *Bot) showLists(l *learner, messageID int) {
	active := l.store.ActiveList()
	var sb strings.Builder
	sb.WriteString("🗂 Списки слов\n\n")

	var buttons [][]MenuButton
	for _, list := range l.store.Lists() {
		mark := "▫️"
		if list.ID == active.ID {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s (%d сл.)\n", mark, list.Name, len(list.Words))
		buttons = append(buttons, []MenuButton{
			{Text: mark + " " + list.Name, CallbackData: prefixListSelect + list.ID},
			{Text: "🗑", CallbackData: prefixListDelete + list.ID},
		})
	}
	buttons = append(buttons, []MenuButton{{Text: "➕ Новый список", CallbackData: callbackListNew}}, menuRow)
	b.send(l.chatID, messageID, sb.String(), buttons)
}

func (b *Bot) startCards(l *learner) {
	l.engine.Exit()
	deck, err := quest.NewDeck(l.store.ActiveList().Words)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	l.setDeck(deck)
	b.sendCard(l.chatID, 0, deck.Current())
}

func (b *Bot) sendCard(chatID int64, messageID int, card quest.Card) {
	text := fmt.Sprintf("🃏 %d/%d\n\n%s", card.Index+1, card.Total, card.Shown())
	if card.Revealed {
		text = fmt.Sprintf("🃏 %d/%d\n\n%s\n(%s)", card.Index+1, card.Total, card.Shown(), card.Word.English)
	}
	b.send(chatID, messageID, text, [][]MenuButton{
		{{Text: "🔄 Перевернуть", CallbackData: callbackCardsFlip}, {Text: "➡️ Дальше", CallbackData: callbackCardsNext}},
		{{Text: "✖️ Выйти", CallbackData: callbackCardsExit}},
	})
}

func (b *Bot) startQuest(l *learner) {
	l.setDeck(nil)
	state, err := l.engine.Start(l.store.ActiveList().Words)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	b.sendQuestState(l.chatID, state)
}

// sendQuestState renders the current quest step
func (b *Bot) sendQuestState(chatID int64, state quest.State) {
	exit := []MenuButton{{Text: "✖️ Выйти", CallbackData: callbackQuestExit}}

	switch state.Step {
	case quest.StepChoice:
		item := state.Item
		text := fmt.Sprintf("🎯 %d/%d · выбери перевод\n\n%s", state.Index+1, state.Total, item.Prompt())
		var buttons [][]MenuButton
		for i, option := range item.Options {
			data := prefixQuestOption + strconv.Itoa(state.Index) + ":" + strconv.Itoa(i)
			buttons = append(buttons, []MenuButton{{Text: option, CallbackData: data}})
		}
		b.send(chatID, 0, text, append(buttons, exit))
	case quest.StepSpelling:
		text := fmt.Sprintf("✍️ %d/%d · напиши перевод\n\n%s", state.Index+1, state.Total, state.Item.Prompt())
		b.send(chatID, 0, text, [][]MenuButton{exit})
	case quest.StepComplete:
		text := fmt.Sprintf("🏆 Квест пройден! Слов: %d", state.Total)
		b.send(chatID, 0, text, [][]MenuButton{
			{{Text: "🔁 Ещё раз", CallbackData: callbackQuestStart}, {Text: "📊 Статистика", CallbackData: callbackStats}},
		})
	}
}

func (b *Bot) spell(ctx context.Context, l *learner, text string) {
	state, err := l.engine.Spell(ctx, text)
	if err != nil {
		b.sendText(l.chatID, b.describeError(err))
		return
	}
	if state.Feedback == quest.FeedbackCorrect {
		p := l.tracker.Progress()
		b.sendText(l.chatID, fmt.Sprintf("✅ Верно! %s - %s\n🔥 Серия: %d дн.",
			state.Item.Word.English, state.Item.Word.Russian, p.Streak))
		return
	}
	b.sendText(l.chatID, "❌ Неверно, попробуй ещё раз.")
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	notice := ""
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, notice)); err != nil {
			b.logger.Warn("failed to answer callback", "chat_id", chatID, "error", err)
		}
	}()

	l, err := b.learnerFor(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to load learner", "chat_id", chatID, "error", err)
		notice = "⚠️ Не удалось загрузить данные"
		return
	}

	data := callback.Data
	switch data {
	case callbackMenu:
		b.send(chatID, 0, "Выбери действие:", MainMenuButtons())
	case callbackStats:
		b.showStats(l)
	case callbackWords:
		b.showWords(l, 0)
	case callbackLists:
		b.showLists(l, 0)
	case callbackImport:
		b.promptImport(l)
	case callbackQuestStart:
		b.startQuest(l)
	case callbackQuestExit:
		l.engine.Exit()
		b.send(chatID, messageID, "Квест остановлен.", MainMenuButtons())
	case callbackCardsStart:
		b.startCards(l)
	case callbackCardsFlip, callbackCardsNext:
		deck := l.currentDeck()
		if deck == nil {
			notice = "Карточки закрыты, начни заново: /cards"
			return
		}
		card := deck.Flip
		if data == callbackCardsNext {
			card = deck.Next
		}
		b.sendCard(chatID, messageID, card())
	case callbackCardsExit:
		l.setDeck(nil)
		b.send(chatID, messageID, "Карточки закрыты.", MainMenuButtons())
	case callbackListNew:
		l.setInputMode(inputListName)
		b.sendText(chatID, "Как назвать новый список?")
	default:
		notice = b.handlePrefixedCallback(ctx, l, messageID, data)
	}
}

// handlePrefixedCallback handles callbacks that carry an argument and
// returns the notice shown to the user
func (b *Bot) handlePrefixedCallback(ctx context.Context, l *learner, messageID int, data string) string {
	switch {
	case strings.HasPrefix(data, prefixQuestOption):
		return b.choose(l, strings.TrimPrefix(data, prefixQuestOption))
	case strings.HasPrefix(data, prefixWordDelete):
		list := l.store.ActiveList()
		wordID := strings.TrimPrefix(data, prefixWordDelete)
		if !hasWord(list, wordID) {
			b.showWords(l, messageID)
			return "Слово не найдено в активном списке"
		}
		if err := l.store.DeleteWord(ctx, list.ID, wordID); err != nil {
			return b.describeError(err)
		}
		b.showWords(l, messageID)
		return "Удалено"
	case strings.HasPrefix(data, prefixListSelect):
		if err := l.store.SetActiveList(ctx, strings.TrimPrefix(data, prefixListSelect)); err != nil {
			return b.describeError(err)
		}
		b.showLists(l, messageID)
		return "Список выбран"
	case strings.HasPrefix(data, prefixListDelete):
		if err := l.store.DeleteList(ctx, strings.TrimPrefix(data, prefixListDelete)); err != nil {
			return b.describeError(err)
		}
		b.showLists(l, messageID)
		return "Список удалён"
	}
	b.logger.Warn("unknown callback", "chat_id", l.chatID, "data", data)
	return ""
}

// choose answers the choice step. arg is "<item>:<option>"; a press on an
// outdated question is ignored.
func (b *Bot) choose(l *learner, arg string) string {
	itemStr, optionStr, found := strings.Cut(arg, ":")
	item, err1 := strconv.Atoi(itemStr)
	option, err2 := strconv.Atoi(optionStr)
	if !found || err1 != nil || err2 != nil {
		return ""
	}

	state, ok := l.engine.State()
	if !ok {
		return b.describeError(quest.ErrNoSession)
	}
	if state.Step != quest.StepChoice || state.Index != item || option < 0 || option >= len(state.Item.Options) {
		return "Этот вопрос уже закрыт"
	}

	state, err := l.engine.Choose(state.Item.Options[option])
	if err != nil {
		return b.describeError(err)
	}
	if state.Feedback == quest.FeedbackCorrect {
		return "✅ Верно!"
	}
	return "❌ Неверно, попробуй ещё"
}

// describeError turns an error into a chat notice
func (b *Bot) describeError(err error) string {
	switch {
	case errors.Is(err, words.ErrEmptyInput), errors.Is(err, quest.ErrEmptyInput):
		return "Пусто. Напиши слово."
	case errors.Is(err, words.ErrDuplicateEntry):
		return "Это слово уже есть в списке."
	case errors.Is(err, words.ErrTranslationUnavailable):
		return "Не удалось найти перевод. " + translate.RetryMessage + "."
	case errors.Is(err, words.ErrLastList):
		return "Нельзя удалить последний список."
	case errors.Is(err, words.ErrValidation):
		return "Название списка не может быть пустым."
	case errors.Is(err, words.ErrListNotFound):
		return "Список не найден."
	case errors.Is(err, quest.ErrNotEnoughWords):
		return "Сначала добавь слова в список."
	case errors.Is(err, quest.ErrTransitionPending):
		return "Секунду..."
	case errors.Is(err, quest.ErrNoSession):
		return "Квест не запущен. Начни: /quest"
	case errors.Is(err, quest.ErrSessionComplete):
		return "Квест уже пройден. Начни новый: /quest"
	case errors.Is(err, quest.ErrWrongStep):
		return "Сейчас другой шаг квеста."
	}
	b.logger.Error("request failed", "error", err)
	return "⚠️ Что-то пошло не так, попробуй ещё раз."
}
