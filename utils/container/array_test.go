package container_test

import (
	"testing"

	"github.com/YashasJKumar/V2I-System/utils/container"
	"github.com/stretchr/testify/assert"
)

type testItem struct {
	container.IncrementalItemBase
	id int
}

func ids(a *container.IncrementalArray[*testItem]) []int {
	out := make([]int, 0, a.Len())
	for _, x := range a.Data() {
		out = append(out, x.id)
	}
	return out
}

func TestIncrementalArrayAdd(t *testing.T) {
	a := container.NewIncrementalArray[*testItem]()
	a.Add(&testItem{id: 1})
	a.Add(&testItem{id: 2})
	// 变更在Prepare前不可见
	assert.Equal(t, 0, a.Len())
	a.Prepare()
	assert.Equal(t, []int{1, 2}, ids(a))
	assert.Equal(t, 0, a.Data()[0].Index())
	assert.Equal(t, 1, a.Data()[1].Index())
}

func TestIncrementalArrayRemove(t *testing.T) {
	a := container.NewIncrementalArray[*testItem]()
	items := []*testItem{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for _, x := range items {
		a.Add(x)
	}
	a.Prepare()

	a.Remove(items[1])
	a.Remove(items[3])
	assert.Equal(t, 4, a.Len())
	a.Prepare()
	assert.Equal(t, []int{1, 3}, ids(a))
	// 删除后索引重建
	assert.Equal(t, 0, items[0].Index())
	assert.Equal(t, 1, items[2].Index())
}

func TestIncrementalArrayAddRemoveSameStep(t *testing.T) {
	a := container.NewIncrementalArray[*testItem]()
	a.Add(&testItem{id: 1})
	a.Prepare()

	a.Remove(a.Data()[0])
	a.Add(&testItem{id: 2})
	a.Prepare()
	assert.Equal(t, []int{2}, ids(a))
	assert.Equal(t, 0, a.Data()[0].Index())
}
