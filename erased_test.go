package byref

import (
	"bytes"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErased_ScenarioInt(t *testing.T) {
	x := 5

	ref := New(&x)
	e := ref.Erase()

	require.True(t, Is[int](e))
	require.False(t, Is[string](e))

	target, err := TargetAs[int](e)
	require.NoError(t, err)
	require.Equal(t, 5, *target)
	require.Same(t, &x, target)

	_, err = TargetAs[string](e)
	require.ErrorIs(t, err, ErrInvalidCast)
	require.EqualError(t, err, "byref: invalid cast from int to string")

	require.Equal(t, "5", e.String())
	require.Equal(t, 5, e.ToObject())
}

func TestErased_ScenarioNullString(t *testing.T) {
	n := ErasedNull[string]()

	require.True(t, n.HasType())
	require.False(t, n.IsDefault())
	require.True(t, n.IsNull())
	require.False(t, n.HasTarget())
	require.Equal(t, "", n.String())
	require.Nil(t, n.ToObject())
	require.Equal(t, reflect.TypeFor[string](), n.Type())

	value, ok := TryGetTarget[string](n)
	require.False(t, ok)
	require.Equal(t, "", value)

	// the type matches, the target is missing
	require.True(t, Is[string](n))
	require.PanicsWithError(t, "Ref.Target: null reference of type string", func() {
		_, _ = TargetAs[string](n)
	})
}

func TestErased_Default(t *testing.T) {
	var e Erased

	require.True(t, e.IsDefault())
	require.False(t, e.HasType())
	require.False(t, e.HasTarget())
	require.Nil(t, e.ToObject())
	require.Nil(t, e.Type())
	require.Nil(t, e.Descriptor())
	require.Equal(t, "", e.String())

	require.False(t, Is[int](e))

	_, ok := TryGetTarget[int](e)
	require.False(t, ok)

	_, err := TargetAs[int](e)
	require.EqualError(t, err, "byref: invalid cast from <untyped> to int")

	// default and null are distinct states
	require.False(t, e.Same(ErasedNull[int]()))
}

func TestErased_TryGetTarget(t *testing.T) {
	value := 3.5

	e := Erase(&value)

	got, ok := TryGetTarget[float64](e)
	require.True(t, ok)
	require.Equal(t, 3.5, got)

	// the result is a snapshot, not an alias
	value = 7
	require.Equal(t, 3.5, got)

	other, ok := TryGetTarget[float32](e)
	require.False(t, ok)
	require.Zero(t, other)

	got, ok = TryGetTarget[float64](e.ReadOnly())
	require.True(t, ok)
	require.Equal(t, 7.0, got)

	_, ok = TryGetTarget[float64](ErasedReadOnlyNull[float64]())
	require.False(t, ok)
}

func TestErased_Same(t *testing.T) {
	a, b := 1, 1
	var c int64 = 1

	require.True(t, Erase(&a).Same(New(&a).Erase()))
	require.False(t, Erase(&a).Same(Erase(&b)))
	require.False(t, Erase(&a).Same(Erase(&c)))
	require.True(t, ErasedNull[int]().Same(ErasedNull[int]()))
	require.False(t, ErasedNull[int]().Same(ErasedNull[int64]()))
	require.True(t, Erased{}.Same(Erased{}))

	require.True(t, EraseReadOnly(&a).Same(Erase(&a).ReadOnly()))
}

func TestErased_ToObjectIsCopy(t *testing.T) {
	type Point struct{ X, Y int }

	point := Point{X: 1, Y: 2}

	e := Erase(&point)
	boxed := e.ToObject()

	point.X = 10

	require.Equal(t, Point{X: 1, Y: 2}, boxed)
	require.Equal(t, Point{X: 10, Y: 2}, e.ToObject())
	require.Equal(t, "{10 2}", e.String())
}

func TestErased_ReadOnly(t *testing.T) {
	value := "foo"

	e := Erase(&value)
	readOnly := e.ReadOnly()

	require.Same(t, e.Descriptor(), readOnly.Descriptor())
	require.True(t, Is[string](readOnly))
	require.Equal(t, "foo", readOnly.String())
	require.Equal(t, "foo", readOnly.ToObject())

	got, err := ReadTargetAs[string](readOnly)
	require.NoError(t, err)
	require.Equal(t, "foo", got)

	_, err = ReadTargetAs[[]byte](readOnly)
	require.ErrorIs(t, err, ErrInvalidCast)

	ref, err := NarrowReadOnly[string](readOnly)
	require.NoError(t, err)
	require.Equal(t, "foo", ref.Target())

	var readOnlyDefault ErasedReadOnly
	require.True(t, readOnlyDefault.IsDefault())
	require.Nil(t, readOnlyDefault.Type())
	require.Nil(t, readOnlyDefault.ToObject())
	require.Equal(t, "", readOnlyDefault.String())
}

func TestErased_UnsafeMutable(t *testing.T) {
	value := 1

	readOnly := NewReadOnly(&value).Erase()

	mutable := readOnly.UnsafeMutable()
	require.True(t, mutable.Same(Erase(&value)))

	*MustTargetAs[int](mutable) = 2
	require.Equal(t, 2, value)
}

func TestErased_MustTargetAs(t *testing.T) {
	value := 1

	require.PanicsWithError(t, "byref: invalid cast from int to uint8", func() {
		MustTargetAs[uint8](Erase(&value))
	})
}

func TestErased_Heterogeneous(t *testing.T) {
	name := "gopher"
	age := 14
	temperature := Celsius(36.6)

	refs := []Erased{Erase(&name), Erase(&age), New(&temperature).Erase(), {}}

	var strings, ints, celsius, untyped int
	for _, ref := range refs {
		switch {
		case Is[string](ref):
			strings++
		case Is[int](ref):
			*MustTargetAs[int](ref) += 1
			ints++
		case Is[Celsius](ref):
			celsius++
		case !ref.HasType():
			untyped++
		}
	}

	require.Equal(t, []int{1, 1, 1, 1}, []int{strings, ints, celsius, untyped})
	require.Equal(t, 15, age)
}

func TestErased_NotComparable(t *testing.T) {
	value := 1

	require.False(t, reflect.TypeFor[Erased]().Comparable())
	require.False(t, reflect.TypeFor[ErasedReadOnly]().Comparable())

	require.Panics(t, func() {
		_ = any(Erase(&value)) == any(Erase(&value))
	})

	require.Panics(t, func() {
		lookup := map[any]int{}
		lookup[any(EraseReadOnly(&value))] = 1
	})
}

func TestErased_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}

			return a
		},
	}))

	value := 5
	logger.Info("ref", slog.Any("target", Erase(&value)), slog.Any("null", ErasedNull[int]()))

	require.Equal(t, "level=INFO msg=ref target.type=int target.value=5 null.type=int null.null=true\n", buf.String())
}

func BenchmarkErased_TryGetTarget(b *testing.B) {
	value := 5
	e := Erase(&value)

	b.ReportAllocs()

	var sum int
	for b.Loop() {
		got, _ := TryGetTarget[int](e)
		sum += got
	}

	_ = sum
}
