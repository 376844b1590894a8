package themes

import (
	"fmt"

	"github.com/docsift/docsift/internal/core/domain"
)

// Taxonomy is an ordered, read-only set of themes. Declaration order
// matters: it is the documented tie-break for classification and the
// iteration order for aggregation.
type Taxonomy struct {
	themes []domain.Theme
	byID   map[string]int
}

// NewTaxonomy validates and builds a taxonomy from theme declarations.
func NewTaxonomy(declared []domain.Theme) (*Taxonomy, error) {
	if len(declared) == 0 {
		return nil, fmt.Errorf("%w: taxonomy has no themes", domain.ErrConfiguration)
	}

	byID := make(map[string]int, len(declared))
	themes := make([]domain.Theme, len(declared))

	for i, theme := range declared {
		if theme.ID == "" {
			return nil, fmt.Errorf("%w: theme %d has an empty id", domain.ErrConfiguration, i)
		}
		if theme.ID == domain.UnclassifiedThemeID {
			return nil, fmt.Errorf("%w: theme id %q is reserved", domain.ErrConfiguration, theme.ID)
		}
		if _, dup := byID[theme.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate theme id %q", domain.ErrConfiguration, theme.ID)
		}
		if len(theme.Triggers) == 0 {
			return nil, fmt.Errorf("%w: theme %q has no triggers", domain.ErrConfiguration, theme.ID)
		}
		byID[theme.ID] = i
		themes[i] = theme
	}

	return &Taxonomy{themes: themes, byID: byID}, nil
}

// Themes returns the themes in declaration order.
func (t *Taxonomy) Themes() []domain.Theme {
	return t.themes
}

// Len returns the number of themes.
func (t *Taxonomy) Len() int {
	return len(t.themes)
}

// Lookup returns the theme with the given id.
func (t *Taxonomy) Lookup(id string) (domain.Theme, bool) {
	i, ok := t.byID[id]
	if !ok {
		return domain.Theme{}, false
	}
	return t.themes[i], true
}

// Label returns the human-readable label for a theme id, falling back
// to the id itself for unknown themes and to "Sem classificação" for
// the explicit Unclassified group.
func (t *Taxonomy) Label(id string) string {
	if id == domain.UnclassifiedThemeID {
		return "Sem classificação"
	}
	if theme, ok := t.Lookup(id); ok {
		return theme.Label
	}
	return id
}

// Default returns the built-in taxonomy: ten educational subject areas
// with Portuguese trigger vocabularies, plus a few English phrases for
// the technical themes where mixed-language material is common.
func Default() *Taxonomy {
	taxonomy, err := NewTaxonomy([]domain.Theme{
		{
			ID:    "inteligencia_artificial",
			Label: "Inteligência Artificial",
			Triggers: []string{
				"ia", "inteligência artificial", "machine learning",
				"deep learning", "neural network", "rede neural",
				"algoritmo", "modelo", "treinamento", "dados",
			},
		},
		{
			ID:    "programacao",
			Label: "Programação",
			Triggers: []string{
				"programação", "código", "python", "javascript", "java",
				"função", "variável", "loop", "condição", "debugging",
			},
		},
		{
			ID:    "matematica",
			Label: "Matemática",
			Triggers: []string{
				"matemática", "cálculo", "álgebra", "geometria",
				"estatística", "probabilidade", "derivada", "integral",
				"equação",
			},
		},
		{
			ID:    "fisica",
			Label: "Física",
			Triggers: []string{
				"física", "mecânica", "termodinâmica", "eletromagnetismo",
				"óptica", "energia", "força", "velocidade", "aceleração",
				"onda",
			},
		},
		{
			ID:    "quimica",
			Label: "Química",
			Triggers: []string{
				"química", "molécula", "átomo", "reação", "composto",
				"elemento", "tabela periódica", "ligação", "solução",
				"ácido", "base",
			},
		},
		{
			ID:    "biologia",
			Label: "Biologia",
			Triggers: []string{
				"biologia", "célula", "dna", "proteína", "organismo",
				"evolução", "genética", "ecossistema", "biodiversidade",
				"anatomia",
			},
		},
		{
			ID:    "historia",
			Label: "História",
			Triggers: []string{
				"história", "histórico", "passado", "antigo", "medieval",
				"moderno", "guerra", "revolução", "civilização", "cultura",
				"sociedade",
			},
		},
		{
			ID:    "literatura",
			Label: "Literatura",
			Triggers: []string{
				"literatura", "livro", "poesia", "romance", "autor",
				"escritor", "narrativa", "personagem", "enredo", "estilo",
			},
		},
		{
			ID:    "economia",
			Label: "Economia",
			Triggers: []string{
				"economia", "financeiro", "mercado", "capital",
				"investimento", "inflação", "pib", "moeda", "banco",
				"crédito",
			},
		},
		{
			ID:    "filosofia",
			Label: "Filosofia",
			Triggers: []string{
				"filosofia", "filosófico", "ética", "moral", "lógica",
				"razão", "conhecimento", "verdade", "existência",
				"pensamento",
			},
		},
	})
	if err != nil {
		// The built-in declarations are static; a failure here is a
		// programming error.
		panic(err)
	}
	return taxonomy
}
