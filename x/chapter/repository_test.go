package chapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
)

func TestCreateWithSequence(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	test_repo := NewRepository(db)

	novelID := "https://example.com/novel/ctdtp8g2kcvs1l9gnteg"
	db.Create(&core.Actor{
		ID:            novelID,
		Kind:          core.KindGroup,
		Domain:        "example.com",
		PreferredName: "ctdtp8g2kcvs1l9gnteg",
		Name:          "A Winter Serial",
	})

	first, err := test_repo.CreateWithSequence(ctx, novelID, core.ChapterDraft{Title: "Prologue"})
	if assert.NoError(t, err) {
		assert.Equal(t, 0, first.Sequence)
		assert.Equal(t, novelID+"/0", first.ID)
	}

	second, err := test_repo.CreateWithSequence(ctx, novelID, core.ChapterDraft{Title: "Chapter One"})
	if assert.NoError(t, err) {
		assert.Equal(t, 1, second.Sequence)
		assert.Equal(t, novelID+"/1", second.ID)
	}

	// case of the reference must not matter
	third, err := test_repo.CreateWithSequence(ctx, "HTTPS://EXAMPLE.COM/novel/ctdtp8g2kcvs1l9gnteg", core.ChapterDraft{Title: "Chapter Two"})
	if assert.NoError(t, err) {
		assert.Equal(t, 2, third.Sequence)
	}

	_, err = test_repo.CreateWithSequence(ctx, "https://example.com/novel/missing", core.ChapterDraft{Title: "Orphan"})
	assert.True(t, errors.Is(err, core.ErrorNotFound{}))
}

func TestCreateWithSequenceConcurrent(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	test_repo := NewRepository(db)

	novelID := "https://example.com/novel/ctdtp8g2kcvs1l9gnteh"
	db.Create(&core.Actor{
		ID:            novelID,
		Kind:          core.KindGroup,
		Domain:        "example.com",
		PreferredName: "ctdtp8g2kcvs1l9gnteh",
	})

	const writers = 8

	var wg sync.WaitGroup
	results := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			created, err := test_repo.CreateWithSequence(ctx, novelID, core.ChapterDraft{
				Title: fmt.Sprintf("Concurrent %d", n),
			})
			if err == nil {
				results <- created.Sequence
			}
		}(i)
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	count := 0
	for seq := range results {
		assert.False(t, seen[seq], "sequence %d assigned twice", seq)
		seen[seq] = true
		count++
	}
	assert.Equal(t, writers, count)
	for i := 0; i < writers; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}
}
