package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// memStore is an in-memory Store double for engine tests. WithTransaction
// applies writes directly; atomicity under failure is the database's concern
// and is covered by the repository tests.
type memStore struct {
	mu           sync.Mutex
	budgets      map[uuid.UUID]*budget.Budget
	groups       map[uuid.UUID]*budget.Group
	categories   map[uuid.UUID]*category.Category
	accounts     map[uuid.UUID]*account.Account
	accountTrans map[uuid.UUID]*account.AccountTransaction
	transactions map[uuid.UUID]*transaction.Transaction
	splits       map[uuid.UUID]*transaction.Split
	loans        map[uuid.UUID]*loan.Loan
	loanTrans    map[uuid.UUID]*loan.LoanTransaction

	lockedCategories []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		budgets:      make(map[uuid.UUID]*budget.Budget),
		groups:       make(map[uuid.UUID]*budget.Group),
		categories:   make(map[uuid.UUID]*category.Category),
		accounts:     make(map[uuid.UUID]*account.Account),
		accountTrans: make(map[uuid.UUID]*account.AccountTransaction),
		transactions: make(map[uuid.UUID]*transaction.Transaction),
		splits:       make(map[uuid.UUID]*transaction.Split),
		loans:        make(map[uuid.UUID]*loan.Loan),
		loanTrans:    make(map[uuid.UUID]*loan.LoanTransaction),
	}
}

func (s *memStore) Budgets() budget.Repository           { return &memBudgets{s} }
func (s *memStore) Categories() category.Repository      { return &memCategories{s} }
func (s *memStore) Accounts() account.Repository         { return &memAccounts{s} }
func (s *memStore) Transactions() transaction.Repository { return &memTransactions{s} }
func (s *memStore) Loans() loan.Repository               { return &memLoans{s} }

func (s *memStore) WithTransaction(_ context.Context, fn func(uow UnitOfWork) error) error {
	return fn(s)
}

var _ Store = (*memStore)(nil)

type memBudgets struct{ s *memStore }

func (r *memBudgets) Create(_ context.Context, b *budget.Budget) error {
	r.s.budgets[b.ID] = b
	return nil
}

func (r *memBudgets) GetByID(_ context.Context, id uuid.UUID) (*budget.Budget, error) {
	b, ok := r.s.budgets[id]
	if !ok {
		return nil, budget.ErrBudgetNotFound{BudgetID: id}
	}
	return b, nil
}

func (r *memBudgets) CreateGroup(_ context.Context, g *budget.Group) error {
	r.s.groups[g.ID] = g
	return nil
}

func (r *memBudgets) GetGroupByID(_ context.Context, id uuid.UUID) (*budget.Group, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, budget.ErrGroupNotFound{GroupID: id}
	}
	return g, nil
}

func (r *memBudgets) GetGroupByType(_ context.Context, budgetID uuid.UUID, groupType shared.GroupType) (*budget.Group, error) {
	for _, g := range r.s.groups {
		if g.BudgetID == budgetID && g.Type == groupType {
			return g, nil
		}
	}
	return nil, budget.ErrGroupNotFound{}
}

func (r *memBudgets) ListGroups(_ context.Context, budgetID uuid.UUID) ([]*budget.Group, error) {
	var groups []*budget.Group
	for _, g := range r.s.groups {
		if g.BudgetID == budgetID {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (r *memBudgets) UpdateGroup(_ context.Context, g *budget.Group) error {
	if _, ok := r.s.groups[g.ID]; !ok {
		return budget.ErrGroupNotFound{GroupID: g.ID}
	}
	r.s.groups[g.ID] = g
	return nil
}

func (r *memBudgets) DeleteGroup(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.groups[id]; !ok {
		return budget.ErrGroupNotFound{GroupID: id}
	}
	delete(r.s.groups, id)
	return nil
}

type memCategories struct{ s *memStore }

func (r *memCategories) Create(_ context.Context, c *category.Category) error {
	r.s.categories[c.ID] = c
	return nil
}

func (r *memCategories) GetByID(_ context.Context, id uuid.UUID) (*category.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound{CategoryID: id}
	}
	return c, nil
}

func (r *memCategories) GetSystemCategory(_ context.Context, budgetID uuid.UUID, categoryType shared.CategoryType) (*category.Category, error) {
	for _, c := range r.s.categories {
		g, ok := r.s.groups[c.GroupID]
		if ok && g.BudgetID == budgetID && c.Type == categoryType {
			return c, nil
		}
	}
	return nil, category.ErrCategoryNotFound{}
}

func (r *memCategories) ListByBudget(_ context.Context, budgetID uuid.UUID) ([]*category.Category, error) {
	var categories []*category.Category
	for _, c := range r.s.categories {
		if g, ok := r.s.groups[c.GroupID]; ok && g.BudgetID == budgetID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *memCategories) ListByGroup(_ context.Context, groupID uuid.UUID) ([]*category.Category, error) {
	var categories []*category.Category
	for _, c := range r.s.categories {
		if c.GroupID == groupID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *memCategories) Update(_ context.Context, c *category.Category) error {
	if _, ok := r.s.categories[c.ID]; !ok {
		return category.ErrCategoryNotFound{CategoryID: c.ID}
	}
	r.s.categories[c.ID] = c
	return nil
}

func (r *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.categories[id]; !ok {
		return category.ErrCategoryNotFound{CategoryID: id}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memCategories) LockForUpdate(_ context.Context, id uuid.UUID) (*category.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound{CategoryID: id}
	}
	r.s.lockedCategories = append(r.s.lockedCategories, id)
	return c, nil
}

func (r *memCategories) AddToBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return decimal.Zero, category.ErrCategoryNotFound{CategoryID: id}
	}
	c.Balance = c.Balance.Add(delta)
	return c.Balance, nil
}

func (r *memCategories) SetBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	c, ok := r.s.categories[id]
	if !ok {
		return category.ErrCategoryNotFound{CategoryID: id}
	}
	c.Balance = balance
	return nil
}

type memAccounts struct{ s *memStore }

func (r *memAccounts) Create(_ context.Context, a *account.Account) error {
	r.s.accounts[a.ID] = a
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return a, nil
}

func (r *memAccounts) Update(_ context.Context, a *account.Account) error {
	if _, ok := r.s.accounts[a.ID]; !ok {
		return account.ErrAccountNotFound{AccountID: a.ID}
	}
	r.s.accounts[a.ID] = a
	return nil
}

func (r *memAccounts) AddToBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	a, ok := r.s.accounts[id]
	if !ok {
		return decimal.Zero, account.ErrAccountNotFound{AccountID: id}
	}
	a.Balance = a.Balance.Add(delta)
	return a.Balance, nil
}

func (r *memAccounts) CreateAccountTransaction(_ context.Context, t *account.AccountTransaction) error {
	r.s.accountTrans[t.ID] = t
	return nil
}

func (r *memAccounts) GetAccountTransactionByTransactionID(_ context.Context, transactionID uuid.UUID) (*account.AccountTransaction, error) {
	for _, t := range r.s.accountTrans {
		if t.TransactionID == transactionID {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memAccounts) UpdateAccountTransaction(_ context.Context, t *account.AccountTransaction) error {
	r.s.accountTrans[t.ID] = t
	return nil
}

type memTransactions struct{ s *memStore }

func (r *memTransactions) Create(_ context.Context, t *transaction.Transaction) error {
	r.s.transactions[t.ID] = t
	return nil
}

func (r *memTransactions) GetByID(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, transaction.ErrTransactionNotFound{TransactionID: id}
	}
	return t, nil
}

func (r *memTransactions) Update(_ context.Context, t *transaction.Transaction) error {
	if _, ok := r.s.transactions[t.ID]; !ok {
		return transaction.ErrTransactionNotFound{TransactionID: t.ID}
	}
	t.Version++
	r.s.transactions[t.ID] = t
	return nil
}

func (r *memTransactions) SoftDelete(_ context.Context, id uuid.UUID) error {
	t, ok := r.s.transactions[id]
	if !ok || t.Deleted {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}
	t.Deleted = true
	t.Version++
	return nil
}

func (r *memTransactions) CreateSplit(_ context.Context, s *transaction.Split) error {
	r.s.splits[s.ID] = s
	return nil
}

func (r *memTransactions) GetSplit(_ context.Context, id uuid.UUID) (*transaction.Split, error) {
	s, ok := r.s.splits[id]
	if !ok {
		return nil, transaction.ErrSplitNotFound{SplitID: id}
	}
	return s, nil
}

func (r *memTransactions) ListSplits(_ context.Context, transactionID uuid.UUID) ([]*transaction.Split, error) {
	var splits []*transaction.Split
	for _, s := range r.s.splits {
		if s.TransactionID == transactionID {
			splits = append(splits, s)
		}
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].CreatedAt.Before(splits[j].CreatedAt) })
	return splits, nil
}

func (r *memTransactions) UpdateSplit(_ context.Context, s *transaction.Split) error {
	if _, ok := r.s.splits[s.ID]; !ok {
		return transaction.ErrSplitNotFound{SplitID: s.ID}
	}
	r.s.splits[s.ID] = s
	return nil
}

func (r *memTransactions) DeleteSplit(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.splits[id]; !ok {
		return transaction.ErrSplitNotFound{SplitID: id}
	}
	delete(r.s.splits, id)
	return nil
}

func (r *memTransactions) SumSettledSplits(_ context.Context, categoryID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range r.s.splits {
		if s.CategoryID != categoryID {
			continue
		}
		t, ok := r.s.transactions[s.TransactionID]
		if !ok || t.Deleted {
			continue
		}

		pendingExcluded := false
		for _, at := range r.s.accountTrans {
			if at.TransactionID != t.ID || !at.Pending {
				continue
			}
			if a, ok := r.s.accounts[at.AccountID]; ok && a.Tracking != shared.TrackingBalances {
				pendingExcluded = true
			}
		}
		if pendingExcluded {
			continue
		}

		sum = sum.Add(s.Amount)
	}
	return sum, nil
}

type memLoans struct{ s *memStore }

func (r *memLoans) Create(_ context.Context, l *loan.Loan) error {
	r.s.loans[l.ID] = l
	return nil
}

func (r *memLoans) GetByCategoryID(_ context.Context, categoryID uuid.UUID) (*loan.Loan, error) {
	for _, l := range r.s.loans {
		if l.CategoryID == categoryID {
			return l, nil
		}
	}
	return nil, loan.ErrLoanNotFound{CategoryID: categoryID}
}

func (r *memLoans) DeleteByCategoryID(_ context.Context, categoryID uuid.UUID) error {
	for id, l := range r.s.loans {
		if l.CategoryID != categoryID {
			continue
		}
		for ltID, lt := range r.s.loanTrans {
			if lt.LoanID == id {
				delete(r.s.loanTrans, ltID)
			}
		}
		delete(r.s.loans, id)
		return nil
	}
	return loan.ErrLoanNotFound{CategoryID: categoryID}
}

func (r *memLoans) SetBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	l, ok := r.s.loans[id]
	if !ok {
		return loan.ErrLoanNotFound{}
	}
	l.Balance = balance
	return nil
}

func (r *memLoans) CreateLoanTransaction(_ context.Context, t *loan.LoanTransaction) error {
	r.s.loanTrans[t.ID] = t
	return nil
}

func (r *memLoans) GetLoanTransactionBySplitID(_ context.Context, splitID uuid.UUID) (*loan.LoanTransaction, error) {
	for _, t := range r.s.loanTrans {
		if t.SplitID == splitID {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memLoans) SetPrincipal(_ context.Context, id uuid.UUID, principal decimal.Decimal) error {
	t, ok := r.s.loanTrans[id]
	if !ok {
		return loan.ErrLoanNotFound{}
	}
	t.Principal = principal
	return nil
}

func (r *memLoans) DeleteLoanTransaction(_ context.Context, id uuid.UUID) error {
	delete(r.s.loanTrans, id)
	return nil
}

func (r *memLoans) SumPrincipal(_ context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.s.loanTrans {
		if t.LoanID == loanID {
			sum = sum.Add(t.Principal)
		}
	}
	return sum, nil
}
