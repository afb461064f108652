// Package app composes the task tracker from its stores and services.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── core/service/       # Service descriptors
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # User
//	│   └── task/           # Task and its status enumeration
//	├── storage/            # Store interfaces and ID generation
//	│   └── memory/         # Mutex-guarded in-memory stores
//	├── services/           # Business logic
//	│   ├── users/          # CreateUser
//	│   └── tasks/          # Task CRUD scoped to a user
//	├── httpapi/            # HTTP routing, handlers, and audit trail
//	├── runtime/            # HTTP server lifecycle
//	├── system/             # Lifecycle manager
//	└── metrics/            # Prometheus collectors
//
// # Dependency Direction
//
//	cmd/appserver/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/app/httpapi
//	      │                        │
//	      ▼                        ▼
//	internal/app (composition) ──► internal/app/services/*
//	                                       │
//	                                       ▼
//	                               internal/app/storage
//
// # Store Locking
//
// The user store and the task store each hold their own mutex. No operation
// holds both at once: task creation checks the user store, releases it, and
// only then appends to the task store. A panic while a store lock is held
// terminates the process.
package app
