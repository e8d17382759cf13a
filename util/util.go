package util

import (
	"github.com/sirupsen/logrus"
)

// Debug is the highest level printed by DPrintf.
var Debug uint64 = 0

// Log is the logger DPrintf writes to.
var Log = logrus.New()

func SetDebug(level uint64) {
	Debug = level
	if level > 0 {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		Log.Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func Max(n uint64, m uint64) uint64 {
	if n > m {
		return n
	} else {
		return m
	}
}

// SumOverflows reports whether a + b wraps around.
func SumOverflows(a uint64, b uint64) bool {
	return a+b < a
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
