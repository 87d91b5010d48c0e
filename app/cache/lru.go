package cache

// lruList tracks eviction order with a doubly linked list plus a key index.
// The most recently used key sits behind the head sentinel, the eviction
// candidate in front of the tail sentinel.
type lruList struct {
	head  *lruNode
	tail  *lruNode
	nodes map[string]*lruNode
}

type lruNode struct {
	key        string
	prev, next *lruNode
}

func newLRUList() *lruList {
	head := &lruNode{}
	tail := &lruNode{}
	head.next = tail
	tail.prev = head
	return &lruList{head: head, tail: tail, nodes: make(map[string]*lruNode)}
}

// Touch moves a key to the front, inserting it if absent.
func (l *lruList) Touch(key string) {
	node, exists := l.nodes[key]
	if !exists {
		node = &lruNode{key: key}
		l.nodes[key] = node
	} else {
		l.unlink(node)
	}
	node.next = l.head.next
	node.prev = l.head
	l.head.next.prev = node
	l.head.next = node
}

func (l *lruList) Remove(key string) {
	if node, exists := l.nodes[key]; exists {
		l.unlink(node)
		delete(l.nodes, key)
	}
}

// RemoveOldest pops the eviction candidate; "" when empty.
func (l *lruList) RemoveOldest() string {
	if len(l.nodes) == 0 {
		return ""
	}
	oldest := l.tail.prev
	l.unlink(oldest)
	delete(l.nodes, oldest.key)
	return oldest.key
}

func (l *lruList) Len() int {
	return len(l.nodes)
}

func (l *lruList) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
