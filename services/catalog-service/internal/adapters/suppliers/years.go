package suppliers

import (
	"regexp"
	"strconv"
)

// fitmentYears диапазон годов в строке совместимости, например "Kia Telluride 2014-2015 2.4L"
var fitmentYears = regexp.MustCompile(`(\d{4})-(\d{4})`)

// yearsFromFitment извлекает годы из первой строки совместимости.
// Нет строки или совпадения, нет и годов.
func yearsFromFitment(fits List[Text]) (*int, *int) {
	first, ok := fits.First()
	if !ok || !first.Valid() {
		return nil, nil
	}

	match := fitmentYears.FindStringSubmatch(first.String())
	if match == nil {
		return nil, nil
	}

	return atoiPtr(match[1]), atoiPtr(match[2])
}

// yearsFromRange границы годов структурированной совместимости.
// Каждая граница может отсутствовать независимо от другой.
func yearsFromRange(from, to Number) (*int, *int) {
	return from.IntPtr(), to.IntPtr()
}

func atoiPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
