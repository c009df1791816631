package handler

import (
    "encoding/json"
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    // report fields by their JSON names so clients recognise them
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// validateStruct returns a field -> message map, or nil when data is valid.
func validateStruct(data interface{}) map[string]string {
    err := validate.Struct(data)
    if err == nil {
        return nil
    }
    out := make(map[string]string)
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) {
        for _, fe := range verrs {
            out[fe.Field()] = fieldMessage(fe)
        }
    }
    return out
}

func fieldMessage(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "This field is required"
    case "gt":
        return fmt.Sprintf("Must be greater than %s", fe.Param())
    case "min":
        return fmt.Sprintf("Must contain at least %s item(s)", fe.Param())
    case "max":
        return fmt.Sprintf("Must contain at most %s item(s)", fe.Param())
    default:
        return fmt.Sprintf("Invalid %s field", fe.Field())
    }
}

// SeatNumbers accepts either a single seat label or an array of labels.
type SeatNumbers []string

func (s *SeatNumbers) UnmarshalJSON(b []byte) error {
    var one string
    if err := json.Unmarshal(b, &one); err == nil {
        *s = SeatNumbers{one}
        return nil
    }
    var many []string
    if err := json.Unmarshal(b, &many); err != nil {
        return errors.New("seatNumber must be a string or an array of strings")
    }
    *s = many
    return nil
}

// seatRequest is the body of the hold and confirm routes.
type seatRequest struct {
    ShowID     uint64      `json:"showId" validate:"required,gt=0"`
    SeatNumber SeatNumbers `json:"seatNumber" validate:"required,min=1,max=50,dive,required"`
    UserID     string      `json:"userId"`
}
