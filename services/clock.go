package services

import "time"

// Clock отдаёт текущее время. Все решения жизненного цикла — чистые
// функции от (состояние, now), поэтому время всегда внедряется.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func NewRealClock() Clock { return realClock{} }

// FixedClock возвращает заранее заданный момент, для тестов.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
