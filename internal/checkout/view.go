package checkout

// Modal is the open/closed toggle behind each form dialog.
type Modal struct {
	open bool
}

func (m *Modal) Open()        { m.open = true }
func (m *Modal) Close()       { m.open = false }
func (m *Modal) IsOpen() bool { return m.open }

// Carousel tracks the selected slide with wrap-around navigation.
type Carousel struct {
	count int
	index int
}

func NewCarousel(count int) *Carousel {
	return &Carousel{count: count}
}

func (c *Carousel) Index() int { return c.index }

func (c *Carousel) Next() int {
	if c.count == 0 {
		return 0
	}
	c.index = (c.index + 1) % c.count
	return c.index
}

func (c *Carousel) Prev() int {
	if c.count == 0 {
		return 0
	}
	c.index = (c.index - 1 + c.count) % c.count
	return c.index
}

func (c *Carousel) Select(i int) {
	if i >= 0 && i < c.count {
		c.index = i
	}
}
