package recipe

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeTestSuite covers the derived views of catalog recipes and meals
type RecipeTestSuite struct {
	suite.Suite
}

func (suite *RecipeTestSuite) TestSteps() {
	suite.Run("SplitsOnLineBreaks_DropsBlankLines", func() {
		r := Recipe{Instructions: "Boil water.\n\n  Add noodles.  \r\nServe hot."}

		assert.Equal(suite.T(), []string{"Boil water.", "Add noodles.", "Serve hot."}, r.Steps())
	})

	suite.Run("NoInstructions_NoSteps", func() {
		assert.Empty(suite.T(), Recipe{}.Steps())
	})
}

func (suite *RecipeTestSuite) TestSummary() {
	suite.Run("FirstSentence", func() {
		m := Meal{Instructions: "Heat the oil. Fry the onions. Serve."}
		assert.Equal(suite.T(), "Heat the oil", m.Summary())
	})

	suite.Run("SingleSentence", func() {
		r := Recipe{Instructions: "Mix everything"}
		assert.Equal(suite.T(), "Mix everything", r.Summary())
	})

	suite.Run("EmptyInstructions_Fallback", func() {
		assert.Equal(suite.T(), "Discover the full recipe details.", Recipe{}.Summary())
		assert.Equal(suite.T(), "A delicious dish that is easy to make.", Meal{}.Summary())
	})
}

func (suite *RecipeTestSuite) TestInCategory() {
	m := Meal{Category: "Seafood"}

	assert.True(suite.T(), m.InCategory("seafood"))
	assert.True(suite.T(), m.InCategory("SEAFOOD"))
	assert.False(suite.T(), m.InCategory("Chicken"))
	assert.False(suite.T(), Meal{}.InCategory(""))
}

func (suite *RecipeTestSuite) TestDifficultyLabel() {
	assert.Equal(suite.T(), "Medium", DifficultyLevel("medium").Label())
	assert.Equal(suite.T(), "Hard", DifficultyLevel(" HARD ").Label())
	assert.Equal(suite.T(), "", DifficultyLevel("").Label())
	assert.Equal(suite.T(), "Élevé", DifficultyLevel("éLEVÉ").Label())
	assert.Equal(suite.T(), "Ärgerlich", DifficultyLevel(" ärgerlich").Label())
}

func TestRecipeTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeTestSuite))
}

func TestParseBrowseQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     BrowseQuery
		wantMode BrowseMode
	}{
		{"defaults", "", BrowseQuery{Category: AllCategories, Page: 1}, ModeAlphabet},
		{"term only", "s=+chicken+&page=2", BrowseQuery{Term: "chicken", Category: AllCategories, Page: 2}, ModeName},
		{"term and category", "s=chicken&c=Seafood", BrowseQuery{Term: "chicken", Category: "Seafood", Page: 1}, ModeName},
		{"category only", "c=Dessert&page=x", BrowseQuery{Category: "Dessert", Page: 1}, ModeCategory},
		{"explicit sentinel", "c=all&page=0", BrowseQuery{Category: AllCategories, Page: 1}, ModeAlphabet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)

			got := ParseBrowseQuery(values)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMode, got.Mode())
		})
	}
}

func TestBrowseQuery_Encode(t *testing.T) {
	assert.Equal(t, "page=1", NewBrowseQuery("", "All", 1).Encode())
	assert.Equal(t, "c=Seafood&page=3&s=fish+pie", NewBrowseQuery("fish pie", "Seafood", 3).Encode())

	q := NewBrowseQuery("soup", "", 4)
	assert.Equal(t, q, ParseBrowseQuery(q.Values()))
	assert.Equal(t, 2, q.WithPage(2).Page)
}

func TestNewSharePayload(t *testing.T) {
	payload, err := NewSharePayload("Rendang", "https://cookbook.example/recipes/rendang")
	require.NoError(t, err)

	assert.Equal(t, "Rendang", payload.Title)
	assert.Equal(t, "Check out this recipe: Rendang", payload.Text)
	assert.Equal(t, "https://cookbook.example/recipes/rendang", payload.URL)

	_, err = NewSharePayload("Rendang", "/recipes/rendang")
	assert.ErrorIs(t, err, ErrInvalidShareURL)
}
