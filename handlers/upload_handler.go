package handlers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

const profileImageFolder = "tutor_connect_profiles"

// GenerateUploadSignature signs a direct browser upload of the caller's
// profile image. The resulting URL is saved later through PUT /profile/me.
func (h *Handler) GenerateUploadSignature(c *fiber.Ctx) error {
	if h.Config.CloudinaryURL == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured", "kind": "unavailable"})
	}
	cld, err := cloudinary.NewFromURL(h.Config.CloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize Cloudinary", "kind": "internal"})
	}

	parsedURL, err := url.Parse(h.Config.CloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to parse Cloudinary URL", "kind": "internal"})
	}
	secret, _ := parsedURL.User.Password()

	publicID := middleware.CurrentActor(c).ID
	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder:   profileImageFolder,
		PublicID: publicID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare signature params", "kind": "internal"})
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params", "kind": "internal"})
	}

	return c.JSON(fiber.Map{
		"signature":  signature,
		"timestamp":  timestamp,
		"api_key":    cld.Config.Cloud.APIKey,
		"cloud_name": cld.Config.Cloud.CloudName,
		"folder":     profileImageFolder,
		"public_id":  publicID,
	})
}
