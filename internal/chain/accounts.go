package chain

import id "patrolfund/pkg/domain"

// Custody is the contract-owned account. Donations, captured stake, and
// escrowed funds are held here until an operation releases them.
const Custody id.Principal = "patrolfund-custody"

// NativeAsset is the hosting ledger's native fungible asset. Pool creation
// fees are charged in it.
const NativeAsset id.Asset = "native"
