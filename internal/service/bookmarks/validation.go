package bookmarks

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookmarkd/internal/config"
	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

func validateCreateFolder(req *services.CreateFolderRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRules()...),
	))
}

func validateCreateBookmark(req *services.CreateBookmarkRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.Name, bookmarkNameRules()...),
		validation.Field(&req.URL, urlRules()...),
		validation.Field(&req.FolderID, validation.Required.Error("folder is required"), validation.Min(int64(1))),
	))
}

func validateName(itemType models.ItemType, name string) error {
	rules := bookmarkNameRules()
	if itemType == models.ItemTypeFolder {
		rules = folderNameRules()
	}
	return invalid(validation.Validate(name, rules...))
}

func validateURL(rawURL string) error {
	return invalid(validation.Validate(rawURL, urlRules()...))
}

func validateReorderIDs(ids []int64) error {
	return invalid(validation.Validate(ids, validation.Length(0, config.MaxReorderItems)))
}

func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	}
}

func bookmarkNameRules() []validation.Rule {
	return []validation.Rule{validation.RuneLength(0, config.MaxBookmarkNameLength)}
}

func urlRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("url is required"),
		validation.Length(1, config.MaxURLLength),
		validation.By(absoluteHTTPURL),
	}
}

func absoluteHTTPURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// invalid tags a validation failure as domain.ErrInvalidArgument
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
}
