// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fundgate/internal/pkg/logger"

	"github.com/go-zookeeper/zk"
)

// Conn 是 zk 连接需要的最小接口，便于测试替换
type Conn interface {
	Exists(path string) (bool, *zk.Stat, error)
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)
	CreateProtectedEphemeralSequential(path string, data []byte, acl []zk.ACL) (string, error)
	Children(path string) ([]string, *zk.Stat, error)
	Delete(path string, version int32) error
}

// Connect 建立 ZooKeeper 会话
func Connect(servers []string, sessionTimeout time.Duration) (*zk.Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper %v: %w", servers, err)
	}
	logger.L().Info().Strs("servers", servers).Msg("✅ Successfully connected to ZooKeeper.")
	return conn, nil
}

// DistributedLock 基于临时顺序节点的非阻塞锁。
// 会话断开时临时节点自动删除，持有者崩溃不会造成死锁。
type DistributedLock struct {
	conn     Conn
	path     string // 锁的路径，例如 /fundgate/review_locks/deposit-123
	lockNode string // 成功获取锁后，自己创建的节点路径
}

// NewDistributedLock 创建一个新的分布式锁实例，root 下按 resourceID 分目录
func NewDistributedLock(conn Conn, root, resourceID string) (*DistributedLock, error) {
	lockPath := strings.TrimSuffix(root, "/") + "/" + resourceID
	if err := ensurePath(conn, lockPath); err != nil {
		return nil, err
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

// ensurePath 逐级创建持久节点
func ensurePath(conn Conn, path string) error {
	current := ""
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		current += "/" + part
		exists, _, err := conn.Exists(current)
		if err != nil {
			return fmt.Errorf("failed to check node %s: %w", current, err)
		}
		if exists {
			continue
		}
		if _, err := conn.Create(current, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("failed to create node %s: %w", current, err)
		}
	}
	return nil
}

// TryLock 尝试获取锁，拿不到时立即返回 false 并清理自己的节点
func (l *DistributedLock) TryLock() (bool, error) {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return false, fmt.Errorf("failed to create sequential node: %w", err)
	}

	// 2. 获取锁路径下的所有子节点，按序号排序
	children, _, err := l.conn.Children(l.path)
	if err != nil {
		l.conn.Delete(nodePath, -1)
		return false, fmt.Errorf("failed to get children nodes: %w", err)
	}
	sortBySequence(children)

	// 3. 判断自己是否是最小的节点
	myNodeName := strings.TrimPrefix(nodePath, l.path+"/")
	if len(children) > 0 && children[0] == myNodeName {
		l.lockNode = nodePath
		return true, nil
	}

	// 4. 已有持有者，放弃
	if err := l.conn.Delete(nodePath, -1); err != nil && !errors.Is(err, zk.ErrNoNode) {
		return false, fmt.Errorf("failed to delete contender node: %w", err)
	}
	return false, nil
}

// Unlock 释放锁
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

// sortBySequence 按节点名末尾的 10 位序号排序。
// protected 节点带有 "_c_<guid>-" 前缀，直接按字符串排序会被 guid 打乱。
func sortBySequence(children []string) {
	sort.Slice(children, func(i, j int) bool {
		return sequenceOf(children[i]) < sequenceOf(children[j])
	})
}

func sequenceOf(node string) int64 {
	if len(node) < 10 {
		return -1
	}
	seq, err := strconv.ParseInt(node[len(node)-10:], 10, 64)
	if err != nil {
		return -1
	}
	return seq
}
