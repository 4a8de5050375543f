package keychain

import (
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/wtypes"
)

// MemoryKeyStore is an in-memory KeyStore. It backs tests and tooling that
// hold their keys decrypted for the lifetime of the process.
type MemoryKeyStore struct {
	mtx sync.RWMutex

	utxoAddrs map[wtypes.TxIn]wtypes.Address
	addrKeys  map[wtypes.Address]SigningKey
	stakeKeys map[wtypes.RewardAccount]SigningKey
}

// A compile-time assertion to ensure that MemoryKeyStore implements the
// KeyStore interface.
var _ KeyStore = (*MemoryKeyStore)(nil)

// NewMemoryKeyStore creates a new empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		utxoAddrs: make(map[wtypes.TxIn]wtypes.Address),
		addrKeys:  make(map[wtypes.Address]SigningKey),
		stakeKeys: make(map[wtypes.RewardAccount]SigningKey),
	}
}

// AddUTxO records that the output spent by in pays to addr.
func (m *MemoryKeyStore) AddUTxO(in wtypes.TxIn, addr wtypes.Address) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.utxoAddrs[in] = addr
}

// AddAddressKey records the payment key for addr.
func (m *MemoryKeyStore) AddAddressKey(addr wtypes.Address, key SigningKey) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.addrKeys[addr] = key
}

// AddStakeKey records the stake key for the reward account.
func (m *MemoryKeyStore) AddStakeKey(acct wtypes.RewardAccount,
	key SigningKey) {

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.stakeKeys[acct] = key
}

// ResolveInput returns the address of the output the given input spends,
// if the store knows that output.
//
// NOTE: part of the KeyStore interface.
func (m *MemoryKeyStore) ResolveInput(
	in wtypes.TxIn) fn.Option[wtypes.Address] {

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	addr, ok := m.utxoAddrs[in]
	if !ok {
		return fn.None[wtypes.Address]()
	}

	return fn.Some(addr)
}

// SigningKey returns the decrypted payment key for the given address, if
// the store holds it.
//
// NOTE: part of the KeyStore interface.
func (m *MemoryKeyStore) SigningKey(
	addr wtypes.Address) fn.Option[SigningKey] {

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	key, ok := m.addrKeys[addr]
	if !ok {
		return fn.None[SigningKey]()
	}

	return fn.Some(key)
}

// StakeKey returns the decrypted stake key for the given reward account, if
// the store holds it.
//
// NOTE: part of the KeyStore interface.
func (m *MemoryKeyStore) StakeKey(
	acct wtypes.RewardAccount) fn.Option[SigningKey] {

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	key, ok := m.stakeKeys[acct]
	if !ok {
		return fn.None[SigningKey]()
	}

	return fn.Some(key)
}
