// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package api defines the shared contracts of hioload-selector: readiness
// event flags, the notification-engine (reactor) interface the selector
// drives, and the library's error values. Implementations live in the
// reactor and selector packages; test doubles live in fake.
package api
