package common

import (
	"io"

	"github.com/zihgir1/BEVM/log"
)

func CloseOrLog(c io.Closer, logger *log.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "err", err)
	}
}
