package utils

import "time"

// Clock abstracts time.Now so session timing can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
