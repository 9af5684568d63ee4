package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// Payer buys a single lesson.
type Payer interface {
	PayLesson(ctx context.Context, lessonID string) error
}

// CheckoutError reports a checkout that stopped part way. Lessons in Paid were
// bought before LessonID failed; the cart is left untouched.
type CheckoutError struct {
	Paid     []string
	LessonID string
	Err      error
}

func (e *CheckoutError) Error() string {
	msg := fmt.Sprintf("paying lesson %s: %v", e.LessonID, e.Err)
	if len(e.Paid) > 0 {
		msg += fmt.Sprintf(" (already paid: %s)", strings.Join(e.Paid, ", "))
	}
	return msg
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// Checkout pays every item in order, one at a time, and clears the cart once all
// payments succeeded. There is no rollback: on failure the error lists what was paid.
func Checkout(ctx context.Context, m *Manager, payer Payer) ([]string, error) {
	items, err := m.beginCheckout()
	if err != nil {
		return nil, err
	}
	defer m.endCheckout()

	paid := make([]string, 0, len(items))
	for _, it := range items {
		if err := payer.PayLesson(ctx, it.ID); err != nil {
			return paid, &CheckoutError{Paid: paid, LessonID: it.ID, Err: err}
		}
		paid = append(paid, it.ID)
	}

	if err := m.Clear(ctx); err != nil {
		return paid, errors.Wrap(err, "clearing cart after checkout")
	}
	return paid, nil
}

func (m *Manager) beginCheckout() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checkingOut {
		return nil, ErrCheckoutInProgress
	}
	if len(m.items) == 0 {
		return nil, ErrEmptyCart
	}
	m.checkingOut = true

	items := make([]Item, len(m.items))
	copy(items, m.items)
	return items, nil
}

func (m *Manager) endCheckout() {
	m.mu.Lock()
	m.checkingOut = false
	m.mu.Unlock()
}
