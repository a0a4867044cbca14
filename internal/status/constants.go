// internal/status/constants.go
package status

// Bridge Status Block layout constants.
// These values define the published register map and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per bridge.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the acquisition health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the amplifier error kind of the last fault.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the bridge has been in error.
const SlotSecondsInError = 2

// SlotRestarts counts caller-level session restarts (saturating).
const SlotRestarts = 3

// ---- RESERVED RANGE ----

// Slots 4-10 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown is the state before the first block arrives.
const HealthUnknown uint16 = 0

// HealthOK means blocks are streaming.
const HealthOK uint16 = 1

// HealthError means the last session ended in a fault.
const HealthError uint16 = 2

// HealthDisabled means acquisition was stopped on request.
const HealthDisabled uint16 = 4
