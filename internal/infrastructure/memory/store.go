// Package memory implementa los repositorios del libro en memoria. Una transacción toma el lock
// del store completo y, si el callback falla, restaura la copia tomada al inicio.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ inventory.TxRunner             = (*Store)(nil)
	_ repository.StockItemRepository = (*ItemRepo)(nil)
	_ repository.BalanceRepository   = (*BalanceRepo)(nil)
	_ repository.MovementRepository  = (*MovementRepo)(nil)
	_ repository.PurchaseRepository  = (*PurchaseRepo)(nil)
	_ repository.UsageRepository     = (*UsageRepo)(nil)
)

type state struct {
	items     map[string]entity.StockItem
	balances  map[string]entity.InventoryBalance
	movements []entity.InventoryMovement
	purchases []entity.FeedPurchase
	usage     []entity.FeedUsage
	seq       int64
}

func (s *state) clone() *state {
	c := &state{
		items:     make(map[string]entity.StockItem, len(s.items)),
		balances:  make(map[string]entity.InventoryBalance, len(s.balances)),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		purchases: append([]entity.FeedPurchase(nil), s.purchases...),
		usage:     append([]entity.FeedUsage(nil), s.usage...),
		seq:       s.seq,
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

// Store estado en memoria compartido por todos los repositorios.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: &state{
		items:    make(map[string]entity.StockItem),
		balances: make(map[string]entity.InventoryBalance),
	}}
}

// Run ejecuta fn con los repos del libro en una transacción.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
) error) error {
	return s.inTx(ctx, func(tx *txView) error {
		return fn(&MovementRepo{v: tx}, &BalanceRepo{v: tx}, &ItemRepo{v: tx})
	})
}

// RunFeed ejecuta fn con los repos del libro y de compras/consumos en una transacción.
func (s *Store) RunFeed(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
	purchaseRepo repository.PurchaseRepository,
	usageRepo repository.UsageRepository,
) error) error {
	return s.inTx(ctx, func(tx *txView) error {
		return fn(&MovementRepo{v: tx}, &BalanceRepo{v: tx}, &ItemRepo{v: tx}, &PurchaseRepo{v: tx}, &UsageRepo{v: tx})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *txView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(&txView{store: s}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Items repositorio de insumos fuera de transacción.
func (s *Store) Items() *ItemRepo { return &ItemRepo{v: &txView{store: s, autoLock: true}} }

// Balances repositorio de saldos fuera de transacción.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{v: &txView{store: s, autoLock: true}} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo {
	return &MovementRepo{v: &txView{store: s, autoLock: true}}
}

// Purchases repositorio de compras fuera de transacción.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{v: &txView{store: s, autoLock: true}} }

// Usage repositorio de consumos fuera de transacción.
func (s *Store) Usage() *UsageRepo { return &UsageRepo{v: &txView{store: s, autoLock: true}} }

// Tamper sobrescribe un saldo sin pasar por el libro (tests de verificación).
func (s *Store) Tamper(farmID, itemID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(farmID, itemID)
	b := s.st.balances[key]
	b.QuantityOnHand = qty
	s.st.balances[key] = b
}

// txView da acceso al estado; con autoLock cada operación toma el lock por su cuenta.
type txView struct {
	store    *Store
	autoLock bool
}

func (v *txView) do(fn func(st *state) error) error {
	if v.autoLock {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.st)
}

func balanceKey(farmID, itemID string) string { return farmID + "/" + itemID }

// ItemRepo insumos en memoria.
type ItemRepo struct{ v *txView }

func (r *ItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	return r.v.do(func(st *state) error {
		for _, it := range st.items {
			if it.FarmID == item.FarmID && (it.Name == item.Name || (item.QRCode != "" && it.QRCode == item.QRCode)) {
				return domain.ErrDuplicate
			}
		}
		st.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	return r.find(func(it entity.StockItem) bool { return it.ID == id })
}

// GetForUpdate no necesita bloqueo propio: inTx ya serializa la transacción completa.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) GetByFarmAndName(_ context.Context, farmID, name string) (*entity.StockItem, error) {
	return r.find(func(it entity.StockItem) bool { return it.FarmID == farmID && it.Name == name })
}

func (r *ItemRepo) GetByFarmAndQR(_ context.Context, farmID, qrCode string) (*entity.StockItem, error) {
	return r.find(func(it entity.StockItem) bool { return it.FarmID == farmID && it.QRCode == qrCode && qrCode != "" })
}

func (r *ItemRepo) find(match func(entity.StockItem) bool) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.v.do(func(st *state) error {
		for _, it := range st.items {
			if match(it) {
				cp := it
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ItemRepo) Update(_ context.Context, item *entity.StockItem) error {
	return r.v.do(func(st *state) error {
		prev, ok := st.items[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		next := *item
		next.CostPerUnit = prev.CostPerUnit
		st.items[item.ID] = next
		return nil
	})
}

func (r *ItemRepo) UpdateCost(_ context.Context, itemID string, cost decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return domain.ErrNotFound
		}
		it.CostPerUnit = decimal.NewNullDecimal(cost)
		st.items[itemID] = it
		return nil
	})
}

func (r *ItemRepo) ListByFarm(_ context.Context, farmID string, f repository.StockItemFilter) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	err := r.v.do(func(st *state) error {
		search := strings.ToLower(f.Search)
		for _, it := range st.items {
			if it.FarmID != farmID ||
				(f.Category != "" && it.Category != f.Category) ||
				(f.Active != nil && it.IsActive != *f.Active) ||
				(search != "" && !strings.Contains(strings.ToLower(it.Name), search) && it.QRCode != f.Search) {
				continue
			}
			cp := it
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Limit, f.Offset), err
}

// BalanceRepo saldos en memoria.
type BalanceRepo struct{ v *txView }

func (r *BalanceRepo) Get(_ context.Context, farmID, itemID string) (*entity.InventoryBalance, error) {
	var out *entity.InventoryBalance
	err := r.v.do(func(st *state) error {
		if b, ok := st.balances[balanceKey(farmID, itemID)]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *BalanceRepo) EnsureForUpdate(_ context.Context, farmID, itemID, unit string) (*entity.InventoryBalance, error) {
	var out entity.InventoryBalance
	err := r.v.do(func(st *state) error {
		key := balanceKey(farmID, itemID)
		b, ok := st.balances[key]
		if !ok {
			b = *entity.ZeroBalance(farmID, itemID, unit)
			st.balances[key] = b
		}
		out = b
		return nil
	})
	return &out, err
}

func (r *BalanceRepo) Save(_ context.Context, b *entity.InventoryBalance) error {
	return r.v.do(func(st *state) error {
		st.balances[balanceKey(b.FarmID, b.ItemID)] = *b
		return nil
	})
}

func (r *BalanceRepo) ListByFarm(_ context.Context, farmID string) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	err := r.v.do(func(st *state) error {
		for _, b := range st.balances {
			if b.FarmID == farmID {
				cp := b
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// MovementRepo movimientos en memoria.
type MovementRepo struct{ v *txView }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.v.do(func(st *state) error {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		st.seq++
		m.Seq = st.seq
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.v.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.FarmID != f.FarmID ||
				(f.ItemID != "" && m.ItemID != f.ItemID) ||
				(f.Kind != "" && m.Kind != f.Kind) ||
				!inRange(m.Date, f.From, f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return paginate(out, f.Limit, f.Offset), err
}

func (r *MovementRepo) ListForReplay(_ context.Context, farmID, itemID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.FarmID == farmID && m.ItemID == itemID {
				cp := m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) SumUsageSince(_ context.Context, farmID, itemID string, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.FarmID == farmID && m.ItemID == itemID && m.Kind == entity.MovementUsageOut && !m.Date.Before(since) {
				total = total.Add(m.Quantity.Neg())
			}
		}
		return nil
	})
	return total, err
}

// PurchaseRepo compras en memoria.
type PurchaseRepo struct{ v *txView }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.FeedPurchase) error {
	return r.v.do(func(st *state) error {
		st.purchases = append(st.purchases, *p)
		return nil
	})
}

func (r *PurchaseRepo) List(_ context.Context, f repository.FeedEventFilter) ([]*entity.FeedPurchase, error) {
	var out []*entity.FeedPurchase
	err := r.v.do(func(st *state) error {
		for i := len(st.purchases) - 1; i >= 0; i-- {
			p := st.purchases[i]
			if p.FarmID != f.FarmID || (f.ItemID != "" && p.ItemID != f.ItemID) || !inRange(p.Date, f.From, f.To) {
				continue
			}
			out = append(out, &p)
		}
		return nil
	})
	return paginate(out, f.Limit, f.Offset), err
}

// UsageRepo consumos en memoria.
type UsageRepo struct{ v *txView }

func (r *UsageRepo) Create(_ context.Context, u *entity.FeedUsage) error {
	return r.v.do(func(st *state) error {
		st.usage = append(st.usage, *u)
		return nil
	})
}

func (r *UsageRepo) List(_ context.Context, f repository.FeedEventFilter) ([]*entity.FeedUsage, error) {
	var out []*entity.FeedUsage
	err := r.v.do(func(st *state) error {
		for i := len(st.usage) - 1; i >= 0; i-- {
			u := st.usage[i]
			if u.FarmID != f.FarmID ||
				(f.ItemID != "" && u.ItemID != f.ItemID) ||
				(f.CowID != "" && u.CowID != f.CowID) ||
				!inRange(u.Date, f.From, f.To) {
				continue
			}
			out = append(out, &u)
		}
		return nil
	})
	return paginate(out, f.Limit, f.Offset), err
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
