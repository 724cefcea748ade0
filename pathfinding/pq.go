package pathfinding

import "navigation/grid_world"

// frontierItem is a transient search node: a cell with its accumulated cost from the
// start (g) and estimated total cost through it to the goal (f).
type frontierItem struct {
	cell  grid_world.Cell
	g     int
	f     int
	seq   int // insertion order, breaks f ties first-in first-out
	index int
}

// frontier is a binary min-heap over f, for use with container/heap.
type frontier []*frontierItem

func (queue frontier) Len() int { return len(queue) }

func (queue frontier) Less(i, j int) bool {
	if queue[i].f != queue[j].f {
		return queue[i].f < queue[j].f
	}
	return queue[i].seq < queue[j].seq
}

func (queue frontier) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].index = i
	queue[j].index = j
}

func (queue *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*queue)
	*queue = append(*queue, item)
}

func (queue *frontier) Pop() any {
	old := *queue
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*queue = old[:n-1]
	return item
}
