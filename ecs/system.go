package ecs

// System is one step of a frame. Query and Singleton fields of a system
// struct are bound to the storage when the system is registered; any other
// fields are the system's own state and persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// binder is implemented by Query and Singleton so the Scheduler can bind
// system fields without knowing their type parameters.
type binder interface {
	bind(storage *Storage)
}
