package translate

// commonWords is the built-in first tier: everyday words a young learner meets first
var commonWords = map[string]string{
	"apple":     "яблоко",
	"banana":    "банан",
	"orange":    "апельсин",
	"pear":      "груша",
	"grape":     "виноград",
	"lemon":     "лимон",
	"bread":     "хлеб",
	"milk":      "молоко",
	"water":     "вода",
	"juice":     "сок",
	"tea":       "чай",
	"egg":       "яйцо",
	"cheese":    "сыр",
	"soup":      "суп",
	"cake":      "торт",
	"candy":     "конфета",
	"dog":       "собака",
	"cat":       "кошка",
	"bird":      "птица",
	"fish":      "рыба",
	"horse":     "лошадь",
	"cow":       "корова",
	"pig":       "свинья",
	"sheep":     "овца",
	"mouse":     "мышь",
	"rabbit":    "кролик",
	"bear":      "медведь",
	"wolf":      "волк",
	"fox":       "лиса",
	"frog":      "лягушка",
	"duck":      "утка",
	"lion":      "лев",
	"tiger":     "тигр",
	"elephant":  "слон",
	"monkey":    "обезьяна",
	"mother":    "мама",
	"father":    "папа",
	"sister":    "сестра",
	"brother":   "брат",
	"grandma":   "бабушка",
	"grandpa":   "дедушка",
	"friend":    "друг",
	"boy":       "мальчик",
	"girl":      "девочка",
	"baby":      "малыш",
	"teacher":   "учитель",
	"house":     "дом",
	"home":      "дом",
	"school":    "школа",
	"room":      "комната",
	"door":      "дверь",
	"window":    "окно",
	"table":     "стол",
	"chair":     "стул",
	"bed":       "кровать",
	"book":      "книга",
	"pen":       "ручка",
	"pencil":    "карандаш",
	"bag":       "сумка",
	"ball":      "мяч",
	"doll":      "кукла",
	"toy":       "игрушка",
	"car":       "машина",
	"bus":       "автобус",
	"train":     "поезд",
	"plane":     "самолёт",
	"bike":      "велосипед",
	"sun":       "солнце",
	"moon":      "луна",
	"star":      "звезда",
	"sky":       "небо",
	"rain":      "дождь",
	"snow":      "снег",
	"tree":      "дерево",
	"flower":    "цветок",
	"grass":     "трава",
	"sea":       "море",
	"river":     "река",
	"red":       "красный",
	"blue":      "синий",
	"green":     "зелёный",
	"yellow":    "жёлтый",
	"white":     "белый",
	"black":     "чёрный",
	"big":       "большой",
	"small":     "маленький",
	"good":      "хороший",
	"bad":       "плохой",
	"happy":     "счастливый",
	"sad":       "грустный",
	"hot":       "горячий",
	"cold":      "холодный",
	"one":       "один",
	"two":       "два",
	"three":     "три",
	"four":      "четыре",
	"five":      "пять",
	"hello":     "привет",
	"goodbye":   "до свидания",
	"yes":       "да",
	"no":        "нет",
	"please":    "пожалуйста",
	"thank you": "спасибо",
	"hand":      "рука",
	"head":      "голова",
	"eye":       "глаз",
	"nose":      "нос",
	"mouth":     "рот",
	"ear":       "ухо",
	"run":       "бежать",
	"jump":      "прыгать",
	"play":      "играть",
	"read":      "читать",
	"write":     "писать",
	"sing":      "петь",
	"sleep":     "спать",
	"eat":       "есть",
	"drink":     "пить",
}

// lookupDictionary expects a trimmed, lower-cased word
func lookupDictionary(word string) (string, bool) {
	russian, ok := commonWords[word]
	return russian, ok
}
