package content

import "github.com/najubudeen/vanturalog/internal/domain"

// BuildThread arranges a flat item list into nested reply threads,
// preserving the input order among siblings. An item whose parent is not
// in the list is promoted to a root rather than dropped, so a reply to a
// hidden or not-yet-fetched comment stays visible.
func BuildThread(items []domain.ContentItem) []*domain.Thread {
	nodes := make(map[int64]*domain.Thread, len(items))
	for _, item := range items {
		nodes[item.ID] = &domain.Thread{Item: item}
	}

	var roots []*domain.Thread
	for _, item := range items {
		node := nodes[item.ID]
		if item.ParentID != 0 {
			if parent, ok := nodes[item.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
