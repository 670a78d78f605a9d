package session

// LanguageOptions are the languages a user can pick, in menu order
var LanguageOptions = []string{"RU", "EN", "CN"}

// CityOptions lists the city labels shown for each language, in menu order
var CityOptions = map[string][]string{
	"RU": {"Москва", "Санкт-Петербург", "Все"},
	"EN": {"Moscow", "Saint Petersburg", "All"},
	"CN": {"莫斯科", "圣彼得堡", "全部"},
}

// cityKeys maps every city label to the key stored on cards
var cityKeys = map[string]string{
	"Москва":           "moscow",
	"Moscow":           "moscow",
	"莫斯科":              "moscow",
	"Санкт-Петербург":  "spb",
	"Saint Petersburg": "spb",
	"圣彼得堡":             "spb",
	"Все":              "all",
	"All":              "all",
	"全部":               "all",
}

// IsLanguage reports whether label is one of LanguageOptions
func IsLanguage(label string) bool {
	for _, l := range LanguageOptions {
		if l == label {
			return true
		}
	}
	return false
}

// IsCityLabel reports whether label appears in any city menu
func IsCityLabel(label string) bool {
	_, ok := cityKeys[label]
	return ok
}

// CityKey maps a city label to its card key. Unknown labels select all cities.
func CityKey(label string) string {
	if key, ok := cityKeys[label]; ok {
		return key
	}
	return DefaultCity
}

// CitiesFor returns the city labels for a language, falling back to the default language
func CitiesFor(language string) []string {
	if cities, ok := CityOptions[language]; ok {
		return cities
	}
	return CityOptions[DefaultLanguage]
}
