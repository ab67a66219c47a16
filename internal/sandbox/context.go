package sandbox

// Context tells a language task who to run as and within which limits.
// It is shared read-only by everything taking part in one execution.
type Context struct {
	runAs  string
	limits Limits
}

func NewContext(runAs string, limits Limits) *Context {
	return &Context{
		runAs:  runAs,
		limits: limits,
	}
}

func (c *Context) RunAs() string {
	return c.runAs
}

func (c *Context) Limits() Limits {
	return c.limits
}

func (c *Context) CPUTimeSec() int {
	return c.limits.CPUTimeSec
}

// MemoryKB is the memory limit as the enforcer expects it.
func (c *Context) MemoryKB() int64 {
	return int64(c.limits.MemoryMB) * 1000
}

// DiskBytes is the disk (and output stream) limit as the enforcer expects it.
func (c *Context) DiskBytes() int64 {
	return int64(c.limits.DiskMB) * 1000000
}

func (c *Context) MaxProcs() int {
	return c.limits.MaxProcs
}
