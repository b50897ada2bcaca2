// Package plans содержит статический каталог тарифов и нормализацию их идентификаторов.
package plans

import "strings"

// Catalog сопоставляет нормализованный идентификатор тарифа с ценой в минимальных единицах валюты.
type Catalog map[string]int64

// Default - каталог тарифов сервиса (цены в кобо, 1 NGN = 100 kobo).
var Default = Catalog{
	"monthly": 8000 * 100,
	"6month":  45000 * 100,
}

// Normalize приводит идентификатор тарифа к нижнему регистру и оставляет только латиницу и цифры,
// поэтому "6-Month" и "6month" указывают на один тариф.
func Normalize(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup возвращает нормализованный идентификатор и цену тарифа.
func (c Catalog) Lookup(id string) (string, int64, bool) {
	key := Normalize(id)
	if key == "" {
		return "", 0, false
	}
	price, ok := c[key]
	if !ok {
		return key, 0, false
	}
	return key, price, true
}
