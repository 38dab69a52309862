package deck

// Card is one tarot card of the major arcana.
type Card struct {
	ID      string
	Name    string
	Meaning string
}

// Position labels of a three-card spread, in drawing order.
var SpreadPositions = []string{"Прошлое", "Настоящее", "Будущее"}

// cards is the major arcana in traditional order.
var cards = []Card{
	{ID: "fool", Name: "Шут", Meaning: "новые начинания, спонтанность, доверие к жизни"},
	{ID: "magician", Name: "Маг", Meaning: "воля, мастерство, умение воплощать задуманное"},
	{ID: "high_priestess", Name: "Верховная Жрица", Meaning: "интуиция, тайное знание, внутренний голос"},
	{ID: "empress", Name: "Императрица", Meaning: "изобилие, забота, творческая энергия"},
	{ID: "emperor", Name: "Император", Meaning: "порядок, стабильность, авторитет"},
	{ID: "hierophant", Name: "Иерофант", Meaning: "традиции, наставничество, духовный поиск"},
	{ID: "lovers", Name: "Влюблённые", Meaning: "выбор, союз, гармония отношений"},
	{ID: "chariot", Name: "Колесница", Meaning: "движение вперёд, решимость, победа"},
	{ID: "strength", Name: "Сила", Meaning: "внутренняя сила, терпение, мягкое влияние"},
	{ID: "hermit", Name: "Отшельник", Meaning: "уединение, поиск истины, мудрость"},
	{ID: "wheel_of_fortune", Name: "Колесо Фортуны", Meaning: "перемены, судьба, поворотный момент"},
	{ID: "justice", Name: "Справедливость", Meaning: "равновесие, честность, последствия решений"},
	{ID: "hanged_man", Name: "Повешенный", Meaning: "пауза, новый взгляд, осознанная жертва"},
	{ID: "death", Name: "Смерть", Meaning: "завершение, трансформация, освобождение"},
	{ID: "temperance", Name: "Умеренность", Meaning: "баланс, исцеление, золотая середина"},
	{ID: "devil", Name: "Дьявол", Meaning: "зависимости, иллюзии, скрытые привязанности"},
	{ID: "tower", Name: "Башня", Meaning: "внезапные перемены, разрушение старого"},
	{ID: "star", Name: "Звезда", Meaning: "надежда, вдохновение, обновление"},
	{ID: "moon", Name: "Луна", Meaning: "неопределённость, страхи, подсознание"},
	{ID: "sun", Name: "Солнце", Meaning: "успех, ясность, радость"},
	{ID: "judgement", Name: "Суд", Meaning: "пробуждение, переоценка, второй шанс"},
	{ID: "world", Name: "Мир", Meaning: "завершение цикла, целостность, достижение"},
}

var cardIndex = func() map[string]Card {
	m := make(map[string]Card, len(cards))
	for _, c := range cards {
		m[c.ID] = c
	}
	return m
}()

// Cards returns the full catalog in traditional order.
func Cards() []Card {
	return cards
}

// CardByID looks up a card by its identifier.
func CardByID(id string) (Card, bool) {
	c, ok := cardIndex[id]
	return c, ok
}
