// internal/status/constants.go
package status

// Availability status block layout.
// These values define the panel protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of holding registers in the block.
const SlotsPerBlock = 12

// ---- SLOT INDICES ----

// SlotUIState holds the rendered affordance (UI* codes).
const SlotUIState = 0

// SlotResolved is 1 once availability has been decided.
const SlotResolved = 1

// SlotAvailable holds the resolved availability (0/1).
const SlotAvailable = 2

// SlotSource holds the signal source that decided availability.
const SlotSource = 3

// SlotDemoted holds the number of page sessions currently demoted.
const SlotDemoted = 4

// SlotSecondsPending counts seconds spent without a decision.
const SlotSecondsPending = 5

// SlotProbeAttempts holds the number of probe invocations so far.
const SlotProbeAttempts = 6

// ---- RESERVED RANGE ----

// Slots 7–10 are reserved for future use.
const SlotReservedStart = 7
const SlotReservedEnd = 10

// SlotHeartbeat counts full block re-asserts: the first write and every
// recovery after a failed write. Incremental writes leave it untouched.
const SlotHeartbeat = 11

// ---- UI CODES ----

// UIPending: neither affordance is shown.
const UIPending uint16 = 0

// UIChat: chat affordance shown.
const UIChat uint16 = 1

// UIOffline: offline affordance shown.
const UIOffline uint16 = 2

// ---- LIMITS ----

// MaxCounter is where counters saturate instead of wrapping.
const MaxCounter = 65535
