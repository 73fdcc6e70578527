package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNil is returned when a key does not exist
var ErrNil = redis.Nil

// IsNil checks whether err means the key does not exist
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
