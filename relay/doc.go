/*
Package relay implements the token relay core.

The relay lets callers move value and manage storage allocations on external
ledgers which require every account to hold prepaid storage before any balance
can be recorded for it. Before a transfer the relay makes sure both sender and
receiver are registered on the ledger, paying the allocation from its own
treasury if needed. It keeps a mirror of allocations it has paid for, which
backs storage withdrawal and unregistration.

All remote interactions are expressed as promise chains issued to a
[promise.Scheduler]. Operations return as soon as preconditions are checked and
the chain is issued, callbacks run later when the host resolves remote calls.
Precondition failures are returned synchronously and leave no state changes.
A failed remote step aborts its chain, the mirror keeps effects of completed
steps only and nothing is retried.

# Storage model

The relay state shares one key-value store with the mirror:

	'a' + admin hash        admin set
	't' + ledger hash       supported ledgers
	'c'                     serialized Config
	'v'                     state schema version
	's' + ledger + account  mirror records, see package mirror

# Events

Events are emitted to the configured [notify.Sink] in NEP-297 format. Hashes
are encoded as Neo addresses, amounts are decimal strings.

token_added, token_removed. Allow-list has been changed.

	data: {"token": string}

ft_transfer. Transfer has been issued, it is emitted before the ledger
confirms it.

	data: {"token": string, "sender": string, "receiver": string, "amount": string, "memo": string}

storage_deposited. Allocation request has been confirmed by the ledger.

	data: {"token": string, "account_id": string, "amount": string}

storage_withdrawn.

	data: {"token": string, "account_id": string, "amount": string}

storage_unregistered. Mirror record has been removed and its total refunded.

	data: {"token": string, "account_id": string}

gas_updated.

	data: {"gas_tgas": number}

storage_deposit_updated.

	data: {"storage_deposit": string}

low_balance. Treasury balance is below the minimum, the operation has been
rejected.

	data: {"balance": string}

paused, unpaused.

	data: {"admin": string}
*/
package relay
