// Package sensors implements the sysstats sensor data model.
//
// # Hierarchy
//
// Sensors are organized in a 3-level hierarchy:
//
//	Container > Object > Property
//
// A Container is a top-level namespace owned by one provider (for
// example "disk" or "cpu"). Objects group the properties of one
// monitored entity (a volume, a core) and may nest. A Property is a
// single leaf metric with a value, display metadata and subscriber
// state.
//
// # Addressing
//
// Every property has a globally unique path:
//
//	<containerId>/<objectId>[/<nestedObjectId>...]/<propertyName>
//
// Segments are case-sensitive ASCII identifiers without embedded '/'.
//
// # Change notification
//
// Properties fire explicit listener callbacks on value change, metadata
// change and destruction; containers announce object and sensor
// additions and removals. Setting a property to its current value fires
// nothing, which keeps idle sensors out of every dispatch frame.
//
// # Concurrency
//
// The tree is not internally synchronized. All mutation and all
// listener dispatch are confined to the daemon's dispatch loop;
// asynchronous collection results must be marshaled onto that loop via
// a Scheduler before touching any sensor.
//
// # Derived sensors
//
// AggregateSensor sums same-named properties of sibling objects matched
// by a pattern, maintaining an explicit dependency list that follows
// object hotplug. PercentageSensor reports a base sensor's value as a
// percentage of its maximum.
package sensors
