package uuid

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// SnowNode 雪花算法节点，生成递增的唯一 id
type SnowNode struct {
	node *snowflake.Node
}

func NewNode(id int64) *SnowNode {
	node, err := snowflake.NewNode(id)
	if err != nil {
		panic(err)
	}
	return &SnowNode{node: node}
}

func (n *SnowNode) GenSnowID() int64 {
	return n.node.Generate().Int64()
}

// GenSnowString 以字符串形式返回 id，用于对外暴露的标识
func (n *SnowNode) GenSnowString() string {
	return strconv.FormatInt(n.GenSnowID(), 10)
}

// GenUUID16 生成16位的随机串，用作请求id
func GenUUID16() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GenUUID 生成标准格式的uuid
func GenUUID() string {
	return uuid.NewString()
}
