// Package i18n holds the compiled-in message tables of the dashboard and picks the
// language of a request.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Key identifies a translatable message.
type Key string

const (
	TitleRequired            Key = "title_required"
	URLEmpty                 Key = "url_empty"
	URLInvalid               Key = "url_invalid"
	URLsInvalid              Key = "urls_invalid"
	URLsRequired             Key = "urls_required"
	KeywordEmpty             Key = "keyword_empty"
	KeywordDuplicate         Key = "keyword_duplicate"
	KeywordsRequired         Key = "keywords_required"
	MaxDepthRange            Key = "max_depth_range"
	QueryRequired            Key = "query_required"
	ResultsCountRange        Key = "results_count_range"
	CategoryNameRequired     Key = "category_name_required"
	CategoryKeywordsRequired Key = "category_keywords_required"
	UnknownStep              Key = "unknown_step"
	NameRequired             Key = "name_required"
	EmailInvalid             Key = "email_invalid"
	PasswordTooShort         Key = "password_too_short"
	PasswordsMismatch        Key = "passwords_mismatch"
	StepSaved                Key = "step_saved"
	LoginSucceeded           Key = "login_succeeded"
	RegisterSucceeded        Key = "register_succeeded"
	ResetLinkSent            Key = "reset_link_sent"
	Yes                      Key = "yes"
	No                       Key = "no"
)

var catalog = map[string]map[Key]string{
	"es": {
		TitleRequired:            "El título del análisis es obligatorio",
		URLEmpty:                 "La URL no puede estar vacía",
		URLInvalid:               "URL inválida",
		URLsInvalid:              "Una o más URLs son inválidas",
		URLsRequired:             "Debe agregar al menos una URL",
		KeywordEmpty:             "La keyword no puede estar vacía",
		KeywordDuplicate:         "Esta keyword ya existe",
		KeywordsRequired:         "Debe agregar al menos una keyword",
		MaxDepthRange:            "La profundidad debe estar entre 1 y 5",
		QueryRequired:            "El término de búsqueda es obligatorio",
		ResultsCountRange:        "El número de resultados debe estar entre 1 y 100",
		CategoryNameRequired:     "Todas las categorías deben tener un nombre",
		CategoryKeywordsRequired: "Cada categoría debe tener al menos una keyword",
		UnknownStep:              "Paso desconocido",
		NameRequired:             "El nombre es obligatorio",
		EmailInvalid:             "Correo electrónico inválido",
		PasswordTooShort:         "La contraseña debe tener al menos 6 caracteres",
		PasswordsMismatch:        "Las contraseñas no coinciden",
		StepSaved:                "Paso validado correctamente",
		LoginSucceeded:           "Sesión iniciada",
		RegisterSucceeded:        "Cuenta creada correctamente",
		ResetLinkSent:            "Hemos enviado un enlace de recuperación a tu correo electrónico",
		Yes:                      "Sí",
		No:                       "No",
	},
	"en": {
		TitleRequired:            "The analysis title is required",
		URLEmpty:                 "The URL cannot be empty",
		URLInvalid:               "Invalid URL",
		URLsInvalid:              "One or more URLs are invalid",
		URLsRequired:             "Add at least one URL",
		KeywordEmpty:             "The keyword cannot be empty",
		KeywordDuplicate:         "This keyword already exists",
		KeywordsRequired:         "Add at least one keyword",
		MaxDepthRange:            "Depth must be between 1 and 5",
		QueryRequired:            "The search term is required",
		ResultsCountRange:        "The number of results must be between 1 and 100",
		CategoryNameRequired:     "Every category needs a name",
		CategoryKeywordsRequired: "Every category needs at least one keyword",
		UnknownStep:              "Unknown step",
		NameRequired:             "Name is required",
		EmailInvalid:             "Invalid email address",
		PasswordTooShort:         "Password must be at least 6 characters",
		PasswordsMismatch:        "Passwords do not match",
		StepSaved:                "Step is valid",
		LoginSucceeded:           "Signed in",
		RegisterSucceeded:        "Account created",
		ResetLinkSent:            "We have sent a recovery link to your email",
		Yes:                      "Yes",
		No:                       "No",
	},
	"fr": {
		TitleRequired:            "Le titre de l'analyse est obligatoire",
		URLEmpty:                 "L'URL ne peut pas être vide",
		URLInvalid:               "URL invalide",
		URLsInvalid:              "Une ou plusieurs URL sont invalides",
		URLsRequired:             "Ajoutez au moins une URL",
		KeywordEmpty:             "Le mot-clé ne peut pas être vide",
		KeywordDuplicate:         "Ce mot-clé existe déjà",
		KeywordsRequired:         "Ajoutez au moins un mot-clé",
		MaxDepthRange:            "La profondeur doit être comprise entre 1 et 5",
		QueryRequired:            "Le terme de recherche est obligatoire",
		ResultsCountRange:        "Le nombre de résultats doit être compris entre 1 et 100",
		CategoryNameRequired:     "Chaque catégorie doit avoir un nom",
		CategoryKeywordsRequired: "Chaque catégorie doit avoir au moins un mot-clé",
		UnknownStep:              "Étape inconnue",
		NameRequired:             "Le nom est obligatoire",
		EmailInvalid:             "Adresse e-mail invalide",
		PasswordTooShort:         "Le mot de passe doit contenir au moins 6 caractères",
		PasswordsMismatch:        "Les mots de passe ne correspondent pas",
		StepSaved:                "Étape validée",
		LoginSucceeded:           "Connexion réussie",
		RegisterSucceeded:        "Compte créé",
		ResetLinkSent:            "Nous avons envoyé un lien de récupération à votre adresse e-mail",
		Yes:                      "Oui",
		No:                       "Non",
	},
	"pt": {
		TitleRequired:            "O título da análise é obrigatório",
		URLEmpty:                 "A URL não pode estar vazia",
		URLInvalid:               "URL inválida",
		URLsInvalid:              "Uma ou mais URLs são inválidas",
		URLsRequired:             "Adicione pelo menos uma URL",
		KeywordEmpty:             "A keyword não pode estar vazia",
		KeywordDuplicate:         "Esta keyword já existe",
		KeywordsRequired:         "Adicione pelo menos uma keyword",
		MaxDepthRange:            "A profundidade deve estar entre 1 e 5",
		QueryRequired:            "O termo de pesquisa é obrigatório",
		ResultsCountRange:        "O número de resultados deve estar entre 1 e 100",
		CategoryNameRequired:     "Todas as categorias devem ter um nome",
		CategoryKeywordsRequired: "Cada categoria deve ter pelo menos uma keyword",
		UnknownStep:              "Etapa desconhecida",
		NameRequired:             "O nome é obrigatório",
		EmailInvalid:             "E-mail inválido",
		PasswordTooShort:         "A senha deve ter pelo menos 6 caracteres",
		PasswordsMismatch:        "As senhas não coincidem",
		StepSaved:                "Etapa validada",
		LoginSucceeded:           "Sessão iniciada",
		RegisterSucceeded:        "Conta criada",
		ResetLinkSent:            "Enviamos um link de recuperação para o seu e-mail",
		Yes:                      "Sim",
		No:                       "Não",
	},
}

var supported = []language.Tag{
	language.Spanish,
	language.English,
	language.French,
	language.Portuguese,
}

// Translator resolves request languages against the supported set.
type Translator struct {
	fallback language.Tag
	matcher  language.Matcher
}

// New builds a Translator whose fallback is defaultLang.
func New(defaultLang string) (*Translator, error) {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse default language %q: %w", defaultLang, err)
	}
	if _, ok := catalog[baseOf(fallback)]; !ok {
		return nil, fmt.Errorf("default language %q is not supported", defaultLang)
	}

	// The first tag handed to the matcher is what it returns when nothing matches.
	tags := []language.Tag{fallback}
	for _, tag := range supported {
		if baseOf(tag) != baseOf(fallback) {
			tags = append(tags, tag)
		}
	}
	return &Translator{fallback: fallback, matcher: language.NewMatcher(tags)}, nil
}

// Match picks the language for the given preferences, typically an explicit ?lang=
// value followed by the Accept-Language header.
func (t *Translator) Match(prefs ...string) language.Tag {
	nonEmpty := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return t.fallback
	}
	tag, _ := language.MatchStrings(t.matcher, nonEmpty...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// Message returns the text of key in tag's language, falling back to the default language
// and then to the key itself.
func (t *Translator) Message(tag language.Tag, key Key) string {
	if msg, ok := catalog[baseOf(tag)][key]; ok {
		return msg
	}
	if msg, ok := catalog[baseOf(t.fallback)][key]; ok {
		return msg
	}
	return string(key)
}

// YesNo returns the affirmative and negative words used in exports.
func (t *Translator) YesNo(tag language.Tag) (string, string) {
	return t.Message(tag, Yes), t.Message(tag, No)
}

// Supported lists the language codes with a message table.
func Supported() []string {
	codes := make([]string, 0, len(supported))
	for _, tag := range supported {
		codes = append(codes, baseOf(tag))
	}
	return codes
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
