package deck

import "fmt"

// Hexagram is one of the 64 I-Ching hexagrams.
type Hexagram struct {
	Number  int
	Name    string
	Meaning string
}

// ID returns the identifier stored in reading records ("hex_1".."hex_64").
func (h Hexagram) ID() string {
	return fmt.Sprintf("hex_%d", h.Number)
}

var hexagrams = []Hexagram{
	{1, "Цянь. Творчество", "мощный подъём, время действовать и вести за собой"},
	{2, "Кунь. Исполнение", "восприимчивость, поддержка, следование естественному ходу"},
	{3, "Чжунь. Начальная трудность", "сложный старт, который требует терпения и союзников"},
	{4, "Мэн. Недоразвитость", "период ученичества, важно искать наставника"},
	{5, "Сюй. Необходимость ждать", "выдержка, подходящий момент ещё не настал"},
	{6, "Сун. Тяжба", "конфликт интересов, лучше искать компромисс"},
	{7, "Ши. Войско", "дисциплина и организованность приведут к цели"},
	{8, "Би. Приближение", "объединение, поиск близких по духу людей"},
	{9, "Сяо-чу. Воспитание малым", "малые шаги, накопление сил"},
	{10, "Люй. Наступление", "осторожное продвижение по тонкому льду"},
	{11, "Тай. Расцвет", "гармония, благоприятный период для начинаний"},
	{12, "Пи. Упадок", "застой, время беречь ресурсы и ждать перемен"},
	{13, "Тун-жэнь. Родня", "единомышленники, открытость и сотрудничество"},
	{14, "Да-ю. Владение многим", "изобилие, успех при скромности"},
	{15, "Цянь. Смирение", "скромность открывает все двери"},
	{16, "Юй. Вольность", "воодушевление, заражающий энтузиазм"},
	{17, "Суй. Последование", "гибкость, умение следовать обстоятельствам"},
	{18, "Гу. Исправление порчи", "работа над ошибками прошлого"},
	{19, "Линь. Посещение", "сближение, рост влияния, благоприятный подход"},
	{20, "Гуань. Созерцание", "наблюдение, осмысление происходящего"},
	{21, "Ши-хо. Стиснутые зубы", "решительное устранение препятствия"},
	{22, "Би. Убранство", "внешняя форма, красота, внимание к деталям"},
	{23, "Бо. Разорение", "разрушение отжившего, не время действовать"},
	{24, "Фу. Возврат", "возвращение света, новый цикл"},
	{25, "У-ван. Беспорочность", "искренность и естественность ведут к удаче"},
	{26, "Да-чу. Воспитание великим", "накопленная сила, сдержанная мощь"},
	{27, "И. Питание", "забота о себе и других, внимание к тому, что питает"},
	{28, "Да-го. Переразвитие великого", "критическая нагрузка, нужны неординарные меры"},
	{29, "Кань. Бездна", "опасность, которую проходят с ясной головой"},
	{30, "Ли. Сияние", "ясность, тепло, привязанность"},
	{31, "Сянь. Взаимодействие", "взаимное влечение, отзывчивость"},
	{32, "Хэн. Постоянство", "устойчивость, верность выбранному пути"},
	{33, "Дунь. Бегство", "своевременное отступление сохраняет силы"},
	{34, "Да-чжуан. Мощь великого", "большая сила, требующая контроля"},
	{35, "Цзинь. Восход", "продвижение, признание заслуг"},
	{36, "Мин-и. Поражение света", "затмение, время скрывать свой свет"},
	{37, "Цзя-жэнь. Домашние", "семья, порядок в близком круге"},
	{38, "Куй. Разлад", "противоположности, поиск общего в различиях"},
	{39, "Цзянь. Препятствие", "преграда, которую обходят, а не штурмуют"},
	{40, "Цзе. Разрешение", "освобождение, развязка накопившегося напряжения"},
	{41, "Сунь. Убыль", "сознательное ограничение ради большего"},
	{42, "И. Приумножение", "рост, благоприятное время для щедрости"},
	{43, "Гуай. Выход", "решительный прорыв, открытое заявление"},
	{44, "Гоу. Перечение", "неожиданная встреча, скрытое искушение"},
	{45, "Цуй. Воссоединение", "собирание сил, объединение вокруг цели"},
	{46, "Шэн. Подъём", "постепенный рост, усилия вознаграждаются"},
	{47, "Кунь. Истощение", "стеснённые обстоятельства, проверка на стойкость"},
	{48, "Цзин. Колодец", "неизменный источник, возвращение к основам"},
	{49, "Гэ. Смена", "назревшая перемена, обновление"},
	{50, "Дин. Жертвенник", "преобразование, новое предназначение"},
	{51, "Чжэнь. Возбуждение", "потрясение, которое пробуждает"},
	{52, "Гэнь. Сосредоточенность", "покой, остановка, медитация"},
	{53, "Цзянь. Течение", "постепенное развитие, всему своё время"},
	{54, "Гуй-мэй. Невеста", "подчинённое положение, скромная роль"},
	{55, "Фэн. Изобилие", "пик расцвета, момент полноты"},
	{56, "Люй. Странствие", "путь, временность, лёгкий багаж"},
	{57, "Сунь. Проникновение", "мягкое, но настойчивое влияние"},
	{58, "Дуй. Радость", "открытость, общение, удовольствие"},
	{59, "Хуань. Раздробление", "рассеивание преград, растворение жёсткости"},
	{60, "Цзе. Ограничение", "разумные рамки, самодисциплина"},
	{61, "Чжун-фу. Внутренняя правда", "искренность, которая убеждает без слов"},
	{62, "Сяо-го. Переразвитие малого", "внимание к мелочам, не замахиваться на великое"},
	{63, "Цзи-цзи. Уже конец", "завершённость, поддержание достигнутого"},
	{64, "Вэй-цзи. Ещё не конец", "переход, последний шаг ещё впереди"},
}

// Hexagrams returns the full catalog in canonical order.
func Hexagrams() []Hexagram {
	return hexagrams
}

// HexagramByID looks up a hexagram by its stored identifier.
func HexagramByID(id string) (Hexagram, bool) {
	var n int
	if _, err := fmt.Sscanf(id, "hex_%d", &n); err != nil {
		return Hexagram{}, false
	}
	if n < 1 || n > len(hexagrams) {
		return Hexagram{}, false
	}
	return hexagrams[n-1], true
}
