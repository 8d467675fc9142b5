package model

import (
	"strconv"
	"strings"

	"github.com/yanun0323/errors"
)

// MoneyScale is the number of fraction digits carried by Money.
const MoneyScale = 2

const maxInt64 = int64(^uint64(0) >> 1)

var (
	ErrMoneySyntax    = errors.New("money: invalid syntax")
	ErrMoneyPrecision = errors.New("money: more than two fraction digits")
	ErrMoneyRange     = errors.New("money: value out of range")
)

// Money is an amount in minor units (cents).
type Money int64

func (m Money) AppendString(buf []byte) []byte {
	return appendScaledInt(buf, int64(m), MoneyScale)
}

func (m Money) String() string {
	return string(m.AppendString(nil))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return m.AppendString(nil), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney parses a decimal string such as "12", "12.5" or "-0.05".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMoneySyntax
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && (!hasDot || fracPart == "") {
		return 0, ErrMoneySyntax
	}
	if len(fracPart) > MoneyScale {
		return 0, ErrMoneyPrecision
	}
	for len(fracPart) < MoneyScale {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, ErrMoneySyntax
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrMoneyRange
	}
	cents, _ := strconv.ParseInt(fracPart, 10, 64)
	if units > (maxInt64-cents)/100 {
		return 0, ErrMoneyRange
	}
	v := units*100 + cents
	if neg {
		v = -v
	}
	return Money(v), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}
