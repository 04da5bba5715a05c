package router

import "testing"

func TestCellGetSet(t *testing.T) {
	c := NewCell(1)
	if got := c.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
	c.Set(2)
	if got := c.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
}

func TestCellSubscribe(t *testing.T) {
	c := NewCell("a")

	var got []string
	cancel := c.Subscribe(func(v string) { got = append(got, v) })

	c.Set("b")
	c.Set("c")
	cancel()
	c.Set("d")

	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("received %d values %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCellSubscriberMayUnsubscribeDuringNotify(t *testing.T) {
	c := NewCell(0)
	var cancel func()
	calls := 0
	cancel = c.Subscribe(func(int) {
		calls++
		cancel()
	})
	c.Set(1)
	c.Set(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
