package category

// Category identifies a bank service area. The set is closed.
type Category string

const (
	Cards     Category = "cards"
	Credits   Category = "credits"
	Deposits  Category = "deposits"
	Business  Category = "business"
	Insurance Category = "insurance"
	Transfers Category = "transfers"
	Exchange  Category = "exchange"
	Branches  Category = "branches"
	ATM       Category = "atm"
	Services  Category = "services"

	// General is the fallback when nothing matches; it is not classified.
	General Category = "general"
)

// definition is one row of the category table. Patterns are lowercase and
// matched as substrings of the lower-cased query.
type definition struct {
	category    Category
	name        string
	description string
	priority    int
	patterns    []string
	primary     map[string]struct{}
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// table is ordered by priority; earlier rows win exact ties.
var table = []definition{
	{
		category:    Cards,
		name:        "Банковские карты",
		description: "Дебетовые и кредитные карты, стикеры, рассрочка",
		priority:    100,
		patterns: []string{
			"карта", "карту", "карты", "банковская карта", "платежная карта", "дебетовая",
			"кредитная карта", "visa", "mastercard", "элкарт", "elkart", "открыть карту",
			"оформить карту", "заказать карту", "активировать карту", "кешбэк", "cashback",
			"стикер", "платежный стикер", "nfc", "бесконтактная", "тумар", "рассрочка",
			"пин код", "пин-код", "cvv", "cvc",
		},
		primary: set("карта", "карту", "карты", "банковская карта", "платежная карта",
			"дебетовая", "кредитная карта", "visa", "mastercard", "элкарт"),
	},
	{
		category:    Credits,
		name:        "Кредитование",
		description: "Потребительские кредиты, ипотека, автокредиты",
		priority:    95,
		patterns: []string{
			"кредит", "кредита", "кредиты", "кредитный", "займ", "заем", "ссуда", "ипотека",
			"ипотечный", "автокредит", "авто кредит", "потребительский кредит", "кредитование",
			"кредитный продукт", "взять кредит", "получить кредит", "оформить кредит",
			"ставка кредит", "условия кредит", "процентная ставка", "досрочное погашение",
			"график платежей", "рефинансирование",
		},
		primary: set("кредит", "кредита", "кредиты", "кредитный", "займ", "ипотека"),
	},
	{
		category:    Deposits,
		name:        "Депозиты и вклады",
		description: "Срочные и накопительные вклады",
		priority:    90,
		patterns: []string{
			"депозит", "депозита", "депозиты", "депозитный", "вклад", "вклада", "вклады",
			"накопительный", "сберегательный", "срочный вклад", "бессрочный вклад",
			"открыть депозит", "оформить вклад", "процент депозит", "процентная ставка",
			"капитализация", "пополнить депозит", "снять с депозита", "проценты",
			"сберегательный счет", "накопительный счет",
		},
		primary: set("депозит", "депозита", "депозиты", "вклад", "вклада", "вклады"),
	},
	{
		category:    Business,
		name:        "Бизнес-услуги",
		description: "Расчетные счета, корпоративные карты, эквайринг",
		priority:    85,
		patterns: []string{
			"расчетный счет", "расчётный счёт", "р/с", "рс", "расчетка", "корпоративный",
			"бизнес", "юридическое лицо", "юрлицо", "юр лицо", "ип",
			"индивидуальный предприниматель", "предприниматель", "счет для бизнеса",
			"бизнес счет", "корпоративная карта", "корпоративный счет", "эквайринг",
			"pos терминал", "терминал", "инкассация", "инкассо", "банк-клиент",
			"зарплатный проект", "документооборот",
		},
		primary: set("расчетный счет", "бизнес", "корпоративный", "юридическое лицо", "ип"),
	},
	{
		category:    Insurance,
		name:        "Страхование",
		description: "Страховые продукты и полисы",
		priority:    80,
		patterns: []string{
			"страхование", "страховка", "страховой", "полис", "страховой продукт",
			"застраховать", "страховая защита", "страховое покрытие", "осаго", "каско",
			"страхование жизни", "медицинская страховка", "страховой случай", "страховая выплата",
		},
		primary: set("страхование", "страховка", "полис"),
	},
	{
		category:    Transfers,
		name:        "Переводы и платежи",
		description: "Денежные переводы, платежные услуги",
		priority:    75,
		patterns: []string{
			"перевод", "переводы", "денежный перевод", "отправить деньги", "перечисление",
			"платеж", "оплата", "перевести деньги", "платежи", "быстрый перевод",
			"международный перевод", "валютный перевод", "комиссия перевод", "лимит перевода",
			"срок перевода",
		},
		primary: set("перевод", "переводы", "платеж", "оплата"),
	},
	{
		category:    Exchange,
		name:        "Валютные операции",
		description: "Обмен валют, актуальные курсы",
		priority:    70,
		patterns: []string{
			"обмен валют", "валюта", "курс", "доллар", "евро", "конвертация", "валютный",
			"обменка", "курс валют", "обменять валюту", "покупка валюты", "продажа валюты",
			"валютные операции", "курс доллара", "курс евро", "актуальный курс",
		},
		primary: set("обмен валют", "валюта", "курс"),
	},
	{
		category:    Branches,
		name:        "Офисы и филиалы",
		description: "Адреса, график работы, местоположение",
		priority:    65,
		patterns: []string{
			"филиал", "филиала", "филиале", "филиалы", "сберкасса", "сберкассы", "сберкассе",
			"офис", "офиса", "офисе", "офисы", "головной офис", "главный офис",
			"центральный офис", "адрес", "адреса", "адресе", "где находится", "где расположен",
			"расположение", "график работы", "режим работы", "часы работы", "время работы",
			"тыныстанова", "абдрахманова", "бишкек", "местоположение",
		},
		primary: set("филиал", "офис", "адрес", "график работы"),
	},
	{
		category:    ATM,
		name:        "Банкоматы",
		description: "Расположение банкоматов, снятие наличных",
		priority:    60,
		patterns: []string{
			"банкомат", "банкомата", "банкоматы", "atm", "атм", "банкомате", "снять деньги",
			"снять наличные", "снятие наличных", "выдача наличных", "где банкомат",
			"ближайший банкомат", "комиссия банкомат", "лимит банкомат", "работа банкомата",
			"банкомат не работает",
		},
		primary: set("банкомат", "банкомата", "банкоматы", "atm", "атм"),
	},
	{
		category:    Services,
		name:        "Банковские услуги",
		description: "Тарифы, комиссии и дополнительные услуги",
		priority:    50,
		patterns: []string{
			"услуга", "услуги", "сервис", "сервисы", "банковские услуги",
			"дополнительные услуги", "тарифы", "тарифный план", "комиссия", "комиссии",
			"условия обслуживания",
		},
		primary: set("услуга", "услуги", "сервис"),
	},
}

var (
	byCategory = make(map[Category]*definition, len(table))
	positions  = make(map[Category]int, len(table))
)

func init() {
	for i := range table {
		byCategory[table[i].category] = &table[i]
		positions[table[i].category] = i
	}
}

func position(c Category) int {
	if i, ok := positions[c]; ok {
		return i
	}
	return len(table)
}

// Info describes a category for listings.
type Info struct {
	Category     Category `json:"category"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Priority     int      `json:"priority"`
	PatternCount int      `json:"keywords_count"`
}

// Parse returns the category named s.
func Parse(s string) (Category, bool) {
	c := Category(s)
	if c == General {
		return General, true
	}
	_, ok := byCategory[c]
	return c, ok
}

// Describe returns listing details for c.
func Describe(c Category) (Info, bool) {
	def, ok := byCategory[c]
	if !ok {
		return Info{}, false
	}
	return def.info(), true
}

// All lists every classifiable category in table order.
func All() []Info {
	out := make([]Info, 0, len(table))
	for i := range table {
		out = append(out, table[i].info())
	}
	return out
}

func (d *definition) info() Info {
	return Info{
		Category:     d.category,
		Name:         d.name,
		Description:  d.description,
		Priority:     d.priority,
		PatternCount: len(d.patterns),
	}
}
