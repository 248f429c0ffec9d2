// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KeyValueStore: Library persistence
//   - ConfigStore: Application configuration
//   - DocumentParser: Turns raw bytes into title + text
//   - PublisherRegistry: Selects the paste service for a dispatch
//   - ChatChannel: Delivers messages and surfaces reply signals
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ContentFetcher: URL ingestion. Without it, only file and text
//     ingestion work.
//   - DeliveryLogStore: Dispatch history. Without it, no history is kept.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or parser package
package driven
