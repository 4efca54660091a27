package breadcrumb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstNonEmpty_PrimaryWins(t *testing.T) {
	secondaryCalled := false

	records := FirstNonEmpty(
		func() []Record { return []Record{{"type": "click"}} },
		func() []Record {
			secondaryCalled = true
			return []Record{{"type": "mirror"}}
		},
	)

	require.Len(t, records, 1)
	assert.Equal(t, "click", records[0]["type"])
	assert.False(t, secondaryCalled, "secondary must not be consulted when primary yields records")
}

func TestFirstNonEmpty_FallsBackWhenPrimaryEmpty(t *testing.T) {
	records := FirstNonEmpty(
		func() []Record { return nil },
		func() []Record { return []Record{{"type": "mirror"}} },
	)

	require.Len(t, records, 1)
	assert.Equal(t, "mirror", records[0]["type"])
}

func TestFirstNonEmpty_AllEmpty(t *testing.T) {
	records := FirstNonEmpty(
		func() []Record { return nil },
		func() []Record { return []Record{} },
	)

	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFirstNonEmpty_SkipsNilSources(t *testing.T) {
	records := FirstNonEmpty(nil, func() []Record { return []Record{{"type": "click"}} })
	require.Len(t, records, 1)

	assert.NotNil(t, FirstNonEmpty(nil, nil))
}

func TestBuffer_AppendAndSnapshot(t *testing.T) {
	b := NewBuffer(10)

	b.Append(Record{"seq": 1})
	b.Append(Record{"seq": 2})
	b.Append(nil) // ignored
	b.Append(Record{"seq": 3})

	snapshot := b.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, 1, snapshot[0]["seq"])
	assert.Equal(t, 3, snapshot[2]["seq"])
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_EvictsOldestAtCapacity(t *testing.T) {
	b := NewBuffer(3)

	for i := 1; i <= 5; i++ {
		b.Append(Record{"seq": i})
	}

	snapshot := b.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, 3, snapshot[0]["seq"])
	assert.Equal(t, 5, snapshot[2]["seq"])
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	b := NewBuffer(10)
	b.Append(Record{"seq": 1})

	snapshot := b.Snapshot()
	snapshot[0] = Record{"seq": 99}

	assert.Equal(t, 1, b.Snapshot()[0]["seq"])
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		b.Append(Record{"seq": i})
	}
	assert.Equal(t, DefaultCapacity, b.Len())
}

func TestBuffer_ConcurrentAppends(t *testing.T) {
	b := NewBuffer(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Append(Record{"id": fmt.Sprintf("%d-%d", worker, j)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 500, b.Len())
}
