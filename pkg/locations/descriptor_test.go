package locations

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type described struct {
	Name  string
	Tags  []string
	Inner pager
}

func TestDescribe_Idempotent(t *testing.T) {
	inner := Define[pager]("").Fields(Field("page", func(p *pager) *int { return &p.Page }))
	loc := Define[described]("/described").Fields(
		Field("name", func(d *described) *string { return &d.Name }, FromPath("n"), FromQuery("")),
		Field("tags", func(d *described) *[]string { return &d.Tags }),
		Nested("inner", func(d *described) *pager { return &d.Inner }, inner),
	)

	first, err := Describe(loc)
	require.NoError(t, err)
	second, err := Describe(loc)
	require.NoError(t, err)
	assert.Same(t, first, second)

	fields := first.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Name())
	assert.Equal(t, ScalarField, fields[0].Kind())
	assert.Equal(t, []Binding{{Source: SourceQuery, Key: "name"}, {Source: SourcePath, Key: "n"}}, fields[0].Bindings())
	assert.Equal(t, SequenceField, fields[1].Kind())
	assert.Equal(t, NestedField, fields[2].Kind())
	assert.Equal(t, Shape(inner), fields[2].NestedShape())
	assert.False(t, first.Singleton())
}

func TestDescribe_ConcurrentFirstUse(t *testing.T) {
	loc := Define[described]("/concurrent").Fields(
		Field("name", func(d *described) *string { return &d.Name }),
	)

	const workers = 32
	results := make([]*Plan[described], workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plan, err := Describe(loc)
			assert.NoError(t, err)
			results[i] = plan
		}(i)
	}
	wg.Wait()

	for _, plan := range results {
		assert.Same(t, results[0], plan)
	}
}

func TestDescribe_ConfigurationErrors(t *testing.T) {
	t.Run("duplicate field", func(t *testing.T) {
		loc := Define[described]("/dup").Fields(
			Field("name", func(d *described) *string { return &d.Name }),
			Field("name", func(d *described) *string { return &d.Name }),
		)
		_, err := Describe(loc)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("nil accessor", func(t *testing.T) {
		loc := Define[described]("/nil").Fields(Field[described, string]("name", nil))
		_, err := Describe(loc)
		require.Error(t, err)
	})

	t.Run("nil nested location", func(t *testing.T) {
		loc := Define[described]("/nested").Fields(
			Nested[described, pager]("inner", func(d *described) *pager { return &d.Inner }, nil),
		)
		_, err := Describe(loc)
		require.Error(t, err)
	})

	t.Run("broken nested location", func(t *testing.T) {
		type broken struct{ C chan int }
		type outer struct{ B broken }
		inner := Define[broken]("").Fields(Field("c", func(b *broken) *chan int { return &b.C }))
		loc := Define[outer]("/outer").Fields(Nested("b", func(o *outer) *broken { return &o.B }, inner))

		_, err := Describe(loc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("self nested location", func(t *testing.T) {
		type tree struct{ Sub *tree }
		loc := Define[tree]("/tree")
		loc.Fields(Nested("sub", func(n *tree) *tree {
			if n.Sub == nil {
				n.Sub = &tree{}
			}
			return n.Sub
		}, loc))

		_, err := Describe(loc)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.ErrorContains(t, err, "nests itself")
	})

	t.Run("nesting cycle", func(t *testing.T) {
		type left struct{ Right any }
		type right struct{ Left any }
		leftLoc := Define[left]("/left")
		rightLoc := Define[right]("/right")
		leftLoc.Fields(Nested("right", func(l *left) *right { return new(right) }, rightLoc))
		rightLoc.Fields(Nested("left", func(r *right) *left { return new(left) }, leftLoc))

		_, err := Describe(leftLoc)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		_, err = Describe(rightLoc)
		require.Error(t, err)
	})

	t.Run("nil location", func(t *testing.T) {
		_, err := Describe[described](nil)
		require.Error(t, err)
		assert.Panics(t, func() { MustDescribe[described](nil) })
	})
}
