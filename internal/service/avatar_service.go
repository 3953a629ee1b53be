package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"

	"golang.org/x/image/draw"

	"go-watchlist/internal/model"
	"go-watchlist/internal/util"
	"go-watchlist/pkg/apierror"
)

const (
	avatarURLPrefix   = "/avatars/"
	maxAvatarPixels   = 40_000_000
	avatarJPEGQuality = 90
)

type FileStore interface {
	Save(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Remove(name string) error
}

type AvatarService struct {
	users UserStore
	files FileStore
	size  int
}

func NewAvatarService(users UserStore, files FileStore, size int) *AvatarService {
	return &AvatarService{users: users, files: files, size: size}
}

// Upload decodes a jpeg, png or gif image, scales it to fit the avatar size
// and stores it as <userId>.jpg.
func (s *AvatarService) Upload(ctx context.Context, identity model.Identity, r io.Reader) (model.PublicUser, error) {
	mimeType, replay, err := util.SniffMIME(r)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("read avatar: %w", err)
	}
	if !util.IsAvatarMIME(mimeType) {
		return model.PublicUser{}, apierror.New("UNSUPPORTED_MEDIA_TYPE", "avatar must be a jpeg, png or gif image", mimeType, http.StatusUnsupportedMediaType)
	}

	raw, err := io.ReadAll(replay)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("read avatar: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return model.PublicUser{}, apierror.New("INVALID_IMAGE", "avatar image could not be decoded", "", http.StatusBadRequest)
	}
	if cfg.Width*cfg.Height > maxAvatarPixels {
		return model.PublicUser{}, apierror.New("INVALID_IMAGE", "avatar image dimensions are too large", "", http.StatusBadRequest)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return model.PublicUser{}, apierror.New("INVALID_IMAGE", "avatar image could not be decoded", "", http.StatusBadRequest)
	}

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, scaleToFit(src, s.size), &jpeg.Options{Quality: avatarJPEGQuality}); err != nil {
		return model.PublicUser{}, fmt.Errorf("encode avatar: %w", err)
	}

	name := AvatarFileName(identity.UserID)
	if _, err := s.files.Save(name, &encoded); err != nil {
		return model.PublicUser{}, fmt.Errorf("store avatar: %w", err)
	}

	user, err := s.users.UpdateAvatar(ctx, identity.UserID, avatarURLPrefix+name)
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

// Open returns a stored avatar file for serving.
func (s *AvatarService) Open(name string) (*os.File, error) {
	return s.files.Open(name)
}

func AvatarFileName(userID string) string {
	return userID + ".jpg"
}

// scaleToFit shrinks src so its longer side is at most size, flattening any
// transparency onto white. Smaller images keep their dimensions.
func scaleToFit(src image.Image, size int) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	maxDim := width
	if height > maxDim {
		maxDim = height
	}

	scale := 1.0
	if maxDim > size && size > 0 {
		scale = float64(size) / float64(maxDim)
	}

	targetWidth := max(int(math.Round(float64(width)*scale)), 1)
	targetHeight := max(int(math.Round(float64(height)*scale)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
