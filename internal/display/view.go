// Package display turns share links and stored menus into the customer-facing page.
package display

import (
	"fmt"
	"html/template"

	"github.com/forgo/qrmenu/api/internal/model"
)

// NotFoundMessage is shown for every link that does not resolve to a menu
const NotFoundMessage = "No menu data found. Please ensure the QR code is valid or contact the restaurant."

// CurrencySymbol prefixes every price
const CurrencySymbol = "₹"

// ItemView is one dish ready for display
type ItemView struct {
	Name         string
	Description  string
	Price        string
	Dietary      model.DietaryTag
	DietaryLabel string
}

// View is what the menu page renders
type View struct {
	Found       bool
	Message     string
	ID          string
	Title       string
	Description string
	Items       []ItemView
	Font        model.Font
	FontColor   model.FontColor

	// Exactly one of BackgroundClass and BackgroundImage is set for a found menu
	BackgroundClass string
	BackgroundImage template.URL
}

// IsImage reports whether the page uses an image background
func (v View) IsImage() bool {
	return v.BackgroundImage != ""
}

// NotFoundView is the fixed page for links that carry no usable menu
func NotFoundView() View {
	return notFoundOn(model.DefaultBackground)
}

func notFoundOn(bg model.Background) View {
	return View{
		Message:         NotFoundMessage,
		BackgroundClass: string(bg),
	}
}

// NewView prepares a menu for display, filling empty styling with the defaults
func NewView(m *model.Menu) View {
	styled := m.Styled()

	v := View{
		Found:       true,
		ID:          styled.ID,
		Title:       styled.Title,
		Description: styled.Description,
		Items:       make([]ItemView, 0, len(styled.Items)),
		Font:        styled.Font,
		FontColor:   styled.FontColor,
	}

	// Background.IsValid has already rejected quotes, parentheses, and whitespace in image references.
	if styled.Background.IsImage() {
		v.BackgroundImage = template.URL(styled.Background)
	} else {
		v.BackgroundClass = string(styled.Background)
	}

	for _, item := range styled.Items {
		v.Items = append(v.Items, ItemView{
			Name:         item.Name,
			Description:  item.Description,
			Price:        FormatPrice(item.Price),
			Dietary:      item.Dietary,
			DietaryLabel: item.Dietary.Label(),
		})
	}
	return v
}

// FormatPrice renders a price with two decimals
func FormatPrice(price float64) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol, price)
}
