package blame

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// BlameDefinition represents a blame definition.
type BlameDefinition struct {
	ReasonCode   string `json:"ReasonCode"`
	Code         string `json:"Code"`
	Message      string `json:"Message"`
	Description  string `json:"Description"`
	Component    string `json:"Component"`
	ResponseType string `json:"ResponseType"`
}

// BlameManager is a wrapper around the blame definitions.
type BlameManager struct {
	BlameDefinitions map[types.ErrorCode]*Error
}

// RetrieveBlameCache returns a fresh copy of the definition for errorCode.
func (bw *BlameManager) RetrieveBlameCache(errorCode types.ErrorCode) *Error {
	if cache, ok := bw.BlameDefinitions[errorCode]; ok {
		return cache.clone()
	}
	return NewBasicError(errorCode)
}

// FetchBlameForError fetches a blame definition for the given error code.
func (bw *BlameManager) FetchBlameForError(errorCode types.ErrorCode, opts ...BlameOption) Blame {
	return bw.RetrieveBlameCache(errorCode).EmptyCause().Wrap(opts...)
}

// NewBlameManager creates a BlameManager from the embedded definitions plus an optional
// definitions file, letting services add their own error codes.
func NewBlameManager(opt *BlameManagerOption) (*BlameManager, error) {
	if opt.Bundle == nil {
		opt.Bundle = helpers.NewBundle(helpers.ParseLanguageTag(opt.LanguageTag))
	}

	local, err := buildBlameManager(embeddedBlameData, opt.Bundle, ReasonCodeNameSpace)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise local blame manager: %w", err)
	}

	if opt.ExistingManager != nil {
		for code, def := range opt.ExistingManager.BlameDefinitions {
			local.BlameDefinitions[code] = def
		}
	}

	if helpers.IsEmpty(opt.LocaleDir) {
		return local, nil
	}

	data, err := os.ReadFile(filepath.Clean(opt.LocaleDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open error definitions file: %w", err)
	}
	custom, err := buildBlameManager(data, opt.Bundle, helpers.GetServiceName())
	if err != nil {
		return nil, err
	}
	for code, def := range custom.BlameDefinitions {
		local.BlameDefinitions[code] = def
	}
	return local, nil
}

func buildBlameManager(data []byte, bundle *i18n.Bundle, namespace string) (*BlameManager, error) {
	var definitions []BlameDefinition
	if err := json.Unmarshal(data, &definitions); err != nil {
		helpers.Println(constant.ERROR, "Error decoding blame definitions: ", err)
		return nil, fmt.Errorf("failed to decode error definitions: %w", err)
	}

	blameDefinitionsMap := make(map[types.ErrorCode]*Error, len(definitions))
	for index, def := range definitions {
		if helpers.IsEmpty(def.ReasonCode) {
			def.ReasonCode = helpers.GenerateReasonCode(namespace, ReasonCodeBase+index)
		}
		blameDefinitionsMap[types.ErrorCode(def.Code)] =
			NewError(def.ReasonCode, types.ErrorCode(def.Code), def.Message, def.Description).
				WithComponent(types.ComponentErrorType(def.Component)).
				WithResponseType(types.ResponseErrorType(def.ResponseType)).
				WithBundle(bundle)
	}
	return &BlameManager{BlameDefinitions: blameDefinitionsMap}, nil
}

// BlameOption defines an option for modifying Blame creation.
type BlameOption func(*BlameOptions)

// BlameOptions holds options for creating Blame instances.
type BlameOptions struct {
	Fields map[string]any
	Causes []error
}

// NewBlameOptions creates a new BlameOptions instance.
func NewBlameOptions() *BlameOptions {
	return &BlameOptions{
		Fields: make(map[string]any),
		Causes: make([]error, 0),
	}
}

// WithField adds a single field to the Blame.
func WithField(key string, value any) BlameOption {
	return func(opts *BlameOptions) {
		if opts.Fields == nil {
			opts.Fields = make(map[string]any)
		}
		opts.Fields[key] = value
	}
}

// WithFields takes a map[string]any and applies all key-value pairs to BlameOptions.
func WithFields(fields map[string]any) BlameOption {
	return func(opts *BlameOptions) {
		if opts.Fields == nil {
			opts.Fields = make(map[string]any)
		}
		for key, value := range fields {
			opts.Fields[key] = value
		}
	}
}

// WithCauses replaces the causes of the Blame, dropping nil errors.
func WithCauses(causes ...error) BlameOption {
	return func(opts *BlameOptions) {
		opts.Causes = make([]error, 0, len(causes))
		for _, c := range causes {
			if c != nil {
				opts.Causes = append(opts.Causes, c)
			}
		}
	}
}

// BlameManagerOption holds configuration
type BlameManagerOption struct {
	LocaleDir       string
	LanguageTag     string
	Bundle          *i18n.Bundle
	ExistingManager *BlameManager
}

// Option defines a function that configures BlameManager
type Option func(*BlameManagerOption)

// WithLocaleDir sets the path of an extra definitions file
func WithLocaleDir(dir string) Option {
	return func(bw *BlameManagerOption) {
		bw.LocaleDir = dir
	}
}

// WithLanguageTag sets the language tag
func WithLanguageTag(tag string) Option {
	return func(bw *BlameManagerOption) {
		bw.LanguageTag = tag
	}
}

// WithExistingManager sets the existing manager
func WithExistingManager(manager *BlameManager) Option {
	return func(bw *BlameManagerOption) {
		bw.ExistingManager = manager
	}
}

// WithBundle sets the bundle
func WithBundle(bundle *i18n.Bundle) Option {
	return func(bw *BlameManagerOption) {
		bw.Bundle = bundle
	}
}

func NewBlameManagerOption(opts ...Option) *BlameManagerOption {
	bw := &BlameManagerOption{
		LanguageTag: helpers.GetDefaultLanguageTag().String(),
	}
	for _, opt := range opts {
		opt(bw)
	}
	return bw
}
