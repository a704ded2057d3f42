package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VITRINE_TEST_MODE") == "" {
			_ = os.Setenv("VITRINE_TEST_MODE", "1")
		}
	})
}
