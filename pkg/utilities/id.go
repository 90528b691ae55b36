package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewUUID returns a random (v4) UUID string. Used for user identifiers.
func NewUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE (default 1). The node is built
// once per process; if it cannot be initialized a KSUID is returned instead.
func NewSnowflakeID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = n
			}
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
