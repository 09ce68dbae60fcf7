package evaluate

import (
	"time"

	"github.com/leftmike/cubist/flags"
)

const (
	DefaultCheckCancelInterval = 1000
)

type Settings struct {
	Flags flags.Flags
	// ResultLimit bounds the size of intermediate collections; zero means no limit.
	ResultLimit int
	// CheckCancelInterval is how many iterations pass between checks for cancellation;
	// zero disables checking.
	CheckCancelInterval int
	QueryTimeout        time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Flags:               flags.Default(),
		CheckCancelInterval: DefaultCheckCancelInterval,
	}
}
