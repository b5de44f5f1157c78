package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// memStore is an in-memory implementation of every repository plus
// domain.UnitOfWork. WithinTx restores a snapshot when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users       map[string]domain.User
	conns       map[domain.ConnectionKey]domain.Connection
	connOrder   []domain.ConnectionKey
	txs         []domain.Transaction
	nextID      int
	failures    map[string]error
	commits     int
	rollbacks   int
	existsCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]domain.User),
		conns:    make(map[domain.ConnectionKey]domain.Connection),
		failures: make(map[string]error),
	}
}

func (m *memStore) failOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

func (m *memStore) fail(op string) error {
	if err, ok := m.failures[op]; ok {
		return err
	}
	return nil
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) addUser(email, username string) domain.User {
	u, err := m.Save(context.Background(), domain.User{Email: email, Username: username, PasswordHash: "hash:" + username})
	if err != nil {
		panic(err)
	}
	return u
}

func (m *memStore) connect(a, b domain.User) {
	if _, err := m.connections().Save(context.Background(), domain.Connection{User: a, Connection: b}); err != nil {
		panic(err)
	}
}

func (m *memStore) storedTransactions() []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Transaction(nil), m.txs...)
}

func (m *memStore) repos() domain.Repositories {
	return domain.Repositories{Users: m, Connections: m.connections(), Transactions: m.transactions()}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	if err := m.fail("begin"); err != nil {
		m.mu.Unlock()
		return &domain.StorageError{Op: "begin", Err: err}
	}
	users := make(map[string]domain.User, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	conns := make(map[domain.ConnectionKey]domain.Connection, len(m.conns))
	for k, v := range m.conns {
		conns[k] = v
	}
	order := append([]domain.ConnectionKey(nil), m.connOrder...)
	txs := append([]domain.Transaction(nil), m.txs...)
	m.mu.Unlock()

	if err := fn(ctx, m.repos()); err != nil {
		m.mu.Lock()
		m.users, m.conns, m.connOrder, m.txs = users, conns, order, txs
		m.rollbacks++
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	return nil
}

// users

func (m *memStore) Save(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("users.Save"); err != nil {
		return domain.User{}, err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.User{}, domain.ErrEmailAlreadyUsed
		}
	}
	if user.ID == "" {
		user.ID = m.id("usr")
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("users.FindByID"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("users.FindByEmail"); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindAll(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// connections

type memConnections struct{ *memStore }

func (m *memStore) connections() memConnections { return memConnections{m} }

func (c memConnections) Save(_ context.Context, conn domain.Connection) (domain.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("connections.Save"); err != nil {
		return domain.Connection{}, err
	}
	key := conn.Key()
	if existing, ok := c.conns[key]; ok {
		return existing, nil
	}
	c.conns[key] = conn
	c.connOrder = append(c.connOrder, key)
	return conn, nil
}

func (c memConnections) FindByUser(_ context.Context, userID string) ([]domain.Connection, error) {
	return c.filter(func(k domain.ConnectionKey) bool { return k.UserID == userID }), nil
}

func (c memConnections) FindByConnection(_ context.Context, connectionID string) ([]domain.Connection, error) {
	return c.filter(func(k domain.ConnectionKey) bool { return k.ConnectionID == connectionID }), nil
}

func (c memConnections) Exists(_ context.Context, key domain.ConnectionKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.existsCalls++
	if err := c.fail("connections.Exists"); err != nil {
		return false, err
	}
	_, ok := c.conns[key]
	return ok, nil
}

func (c memConnections) Delete(_ context.Context, key domain.ConnectionKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, key)
	for i, k := range c.connOrder {
		if k == key {
			c.connOrder = append(c.connOrder[:i:i], c.connOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (c memConnections) filter(keep func(domain.ConnectionKey) bool) []domain.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Connection
	for _, key := range c.connOrder {
		conn, ok := c.conns[key]
		if ok && keep(key) {
			out = append(out, conn)
		}
	}
	return out
}

// transactions

type memTransactions struct{ *memStore }

func (m *memStore) transactions() memTransactions { return memTransactions{m} }

func (t memTransactions) Save(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("transactions.Save"); err != nil {
		return domain.Transaction{}, err
	}
	tx.ID = t.id("tx")
	t.txs = append(t.txs, tx)
	return tx, nil
}

func (t memTransactions) FindBySender(_ context.Context, senderID string) ([]domain.Transaction, error) {
	return t.filter(func(tx domain.Transaction) bool { return tx.Sender.ID == senderID })
}

func (t memTransactions) FindByReceiver(_ context.Context, receiverID string) ([]domain.Transaction, error) {
	return t.filter(func(tx domain.Transaction) bool { return tx.Receiver.ID == receiverID })
}

func (t memTransactions) FindAll(context.Context) ([]domain.Transaction, error) {
	return t.filter(func(domain.Transaction) bool { return true })
}

func (t memTransactions) FindByID(_ context.Context, id string) (*domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tx := range t.txs {
		if tx.ID == id {
			tx := tx
			return &tx, nil
		}
	}
	return nil, nil
}

func (t memTransactions) filter(keep func(domain.Transaction) bool) ([]domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("transactions.Find"); err != nil {
		return nil, err
	}
	var out []domain.Transaction
	for _, tx := range t.txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.Transaction
	err       error
}

func (p *recordingPublisher) TransactionCreated(_ context.Context, tx domain.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, tx)
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(hash, password string) error {
	if hash != "plain:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}
