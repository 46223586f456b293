package helpers

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// isEmptyPrimitive handles primitive type checks
func isEmptyPrimitive(v reflect.Value) (bool, bool) {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == "", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0, true
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0, true
	case reflect.Bool:
		return !v.Bool(), true
	}
	return false, false
}

// isEmptyCollection handles collection type checks
func isEmptyCollection(v reflect.Value) (bool, bool) {
	switch v.Kind() {
	case reflect.Func:
		return v.IsNil(), true
	case reflect.Map, reflect.Slice:
		return v.IsNil() || v.Len() == 0, true
	case reflect.Chan:
		return v.IsNil(), true
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !IsEmpty(v.Index(i).Interface()) {
				return false, true
			}
		}
		return true, true
	}
	return false, false
}

// IsEmpty checks if the given value represents an empty or zero value.
// Values implementing types.EmptyCheck decide for themselves.
func IsEmpty[T any](value T) bool {
	if v, ok := any(value).(types.EmptyCheck); ok {
		return v.IsEmpty()
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		return IsEmpty(v.Elem().Interface())
	}

	if isEmpty, ok := isEmptyPrimitive(v); ok {
		return isEmpty
	}

	if isEmpty, ok := isEmptyCollection(v); ok {
		return isEmpty
	}

	if v.Kind() == reflect.Struct && v.Type() == reflect.TypeOf(time.Time{}) {
		return v.Interface().(time.Time).IsZero()
	}

	return v.IsZero()
}

// FetchErrorStack returns a string containing the error messages separated by semicolons
func FetchErrorStack(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return strings.Join(msgs, "; ")
}

// FetchStatusCode returns the numeric status associated with the response type.
// The codes follow HTTP semantics because remote error bodies mirror them.
func FetchStatusCode(response types.ResponseErrorType) int {
	switch response {
	case constant.BadRequest:
		return constant.StatusBadRequest
	case constant.Unauthorized:
		return constant.StatusUnauthorized
	case constant.Forbidden:
		return constant.StatusForbidden
	case constant.NotFound:
		return constant.StatusNotFound
	case constant.AlreadyExists:
		return constant.StatusConflict
	case constant.RequestTimeout:
		return constant.StatusRequestTimeout
	case constant.ClientClosed:
		return constant.StatusClientClosed
	case constant.Unavailable:
		return constant.StatusServiceUnavailable
	case constant.BadGateway:
		return constant.StatusBadGateway
	}
	return constant.StatusInternalError
}

// IsProdEnvironment returns true if Environment is set to "prod" or "production"
func IsProdEnvironment() bool {
	switch GetEnvironment() {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// GetServiceName returns the service name from the app config or config files
func GetServiceName() string {
	return viper.GetString(constant.Service)
}

// GetEnvironment resolves the environment from the process env first, then the loaded config.
func GetEnvironment() string {
	if os.Getenv(constant.Environment) != "" {
		return os.Getenv(constant.Environment)
	}

	if os.Getenv(constant.RunMode) != "" {
		return os.Getenv(constant.RunMode)
	}

	return viper.GetString(constant.Environment)
}

// GetEnvironmentSlug normalises an environment name to the folder names used for config files.
func GetEnvironmentSlug(environment string) string {
	switch strings.ToLower(environment) {
	case "test", "testing":
		return "test"
	case "staging":
		return "staging"
	case "prod", "production":
		return "prod"
	case "uat":
		return "uat"
	default:
		return "dev"
	}
}

// GetDefaultLanguageTag returns the default language tag
func GetDefaultLanguageTag() types.LanguageTag {
	return types.LanguageTag(language.English)
}

// ParseLanguageTag parses a string into a language.Tag and returns a LanguageTag
func ParseLanguageTag(tagString string) types.LanguageTag {
	if tagString == "" {
		return GetDefaultLanguageTag()
	}
	parsedTag, err := language.Parse(tagString)
	if err != nil {
		return GetDefaultLanguageTag()
	}
	return types.LanguageTag(parsedTag)
}

// NewBundle creates a new i18n.Bundle
func NewBundle(language types.LanguageTag) *i18n.Bundle {
	if IsEmpty(language) {
		language = GetDefaultLanguageTag()
	}
	return i18n.NewBundle(types.ToLanguageTag(language))
}

// GenerateReasonCode generates a namespaced reason code as a string
func GenerateReasonCode(namespace string, code int) string {
	if IsEmpty(namespace) {
		return strconv.Itoa(code)
	}
	return fmt.Sprintf("%s-%d", strings.ToUpper(namespace), code)
}

// RecoverException turns a recovered panic value into an error. It returns
// nil when nothing was recovered. Error values stay unwrappable.
func RecoverException(recovered any) error {
	switch r := recovered.(type) {
	case nil:
		return nil
	case error:
		return fmt.Errorf("panic: %w", r)
	default:
		return fmt.Errorf("panic: %v", r)
	}
}

// Println prints a message with the specified log mode and color
func Println(mode types.LogMode, args ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Println(colorFor(mode) + "[" + timestamp + "] [" + mode.String() + "] " + fmt.Sprint(args...) + constant.ResetColor)
	if mode == constant.FATAL {
		os.Exit(1)
	}
}

func colorFor(mode types.LogMode) string {
	switch mode {
	case constant.INFO:
		return constant.GreenColor
	case constant.WARN:
		return constant.YellowColor
	case constant.ERROR, constant.FATAL:
		return constant.RedColor
	case constant.DEBUG:
		return constant.BlueColor
	default:
		return constant.ResetColor
	}
}

// TailCallerEncoder keeps only the last n path segments of the caller.
func TailCallerEncoder(n int) zapcore.CallerEncoder {
	if n <= 0 {
		return zapcore.ShortCallerEncoder
	}
	return func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		path := caller.File

		sep := 0
		i := len(path) - 1
		for ; i >= 0; i-- {
			c := path[i]
			if c == '/' || c == '\\' {
				sep++
				if sep == n {
					break
				}
			}
		}
		start := i + 1
		if start < 0 || start > len(path) {
			start = 0
		}
		tail := path[start:]

		if strings.IndexByte(tail, '\\') >= 0 {
			tail = strings.ReplaceAll(tail, "\\", "/")
		}

		var sb strings.Builder
		sb.Grow(len(tail) + 12)
		sb.WriteString(tail)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(caller.Line))

		enc.AppendString(sb.String())
	}
}

// JoinSubject joins non-empty subject tokens with '.'.
func JoinSubject(tokens ...string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.Trim(t, ".")
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ".")
}

// GetGoROOT returns the Go root directory
func GetGoROOT() string {
	return os.Getenv("GOROOT")
}
