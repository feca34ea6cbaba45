package remote

// Dispatcher marshals closures onto the interactive goroutine. The terminal
// frontend provides a serial event loop; tests substitute their own.
type Dispatcher interface {
	Invoke(fn func())
}

// Call runs work on its own goroutine and hands the outcome to done via the
// dispatcher. Delivery happens exactly once and never synchronously on the
// calling goroutine, even when work returns immediately.
func Call[T any](d Dispatcher, work func() (T, error), done func(T, error)) {
	go func() {
		v, err := work()
		d.Invoke(func() { done(v, err) })
	}()
}

// Run is Call for operations with no payload beyond success or failure.
func Run(d Dispatcher, work func() error, done func(error)) {
	go func() {
		err := work()
		d.Invoke(func() { done(err) })
	}()
}
