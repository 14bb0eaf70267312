package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay количество минут в сутках. Значение 24:00 допустимо как конец рабочего блока.
const MinutesPerDay = 24 * 60

// ErrInvalidMinuteOfDay возвращается при некорректном времени суток
var ErrInvalidMinuteOfDay = errors.New("invalid time of day, expected HH:MM")

// MinuteOfDay время суток в минутах от полуночи (0..1440).
// На проводе представляется строкой "HH:MM", в БД хранится целым числом.
type MinuteOfDay int

// NewMinuteOfDay создаёт время суток из часов и минут
func NewMinuteOfDay(hour, minute int) (MinuteOfDay, error) {
	if hour < 0 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidMinuteOfDay, hour, minute)
	}
	m := MinuteOfDay(hour*60 + minute)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// MustMinuteOfDay как ParseMinuteOfDay, но паникует при ошибке. Только для констант и тестов.
func MustMinuteOfDay(s string) MinuteOfDay {
	m, err := ParseMinuteOfDay(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMinuteOfDay парсит строку формата "HH:MM"
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinuteOfDay, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinuteOfDay, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinuteOfDay, s)
	}

	return NewMinuteOfDay(hour, minute)
}

// FromTime возвращает время суток для указанного момента (секунды отбрасываются)
func FromTime(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

// Validate проверяет, что значение лежит в пределах суток
func (m MinuteOfDay) Validate() error {
	if m < 0 || m > MinutesPerDay {
		return fmt.Errorf("%w: %d minutes", ErrInvalidMinuteOfDay, int(m))
	}
	return nil
}

// Minutes возвращает количество минут от полуночи
func (m MinuteOfDay) Minutes() int {
	return int(m)
}

// AddMinutes сдвигает время на n минут. Результат может выйти за пределы суток,
// это используется для концов интервалов с буфером.
func (m MinuteOfDay) AddMinutes(n int) MinuteOfDay {
	return m + MinuteOfDay(n)
}

// IsBefore строго раньше
func (m MinuteOfDay) IsBefore(other MinuteOfDay) bool {
	return m < other
}

// IsAfter строго позже
func (m MinuteOfDay) IsAfter(other MinuteOfDay) bool {
	return m > other
}

// OnDate возвращает момент времени на указанную дату в её часовом поясе
func (m MinuteOfDay) OnDate(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(m) * time.Minute)
}

// String форматирует время как "HH:MM"
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON сериализует в "HH:MM"
func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON принимает "HH:MM"
func (m *MinuteOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMinuteOfDay, err)
	}
	parsed, err := ParseMinuteOfDay(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value реализует driver.Valuer
func (m MinuteOfDay) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan реализует sql.Scanner
func (m *MinuteOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*m = MinuteOfDay(v)
	case int32:
		*m = MinuteOfDay(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMinuteOfDay, err)
		}
		*m = MinuteOfDay(n)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMinuteOfDay, err)
		}
		*m = MinuteOfDay(n)
	case nil:
		*m = 0
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidMinuteOfDay, src)
	}
	return nil
}
