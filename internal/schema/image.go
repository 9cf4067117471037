package schema

// resolveImage points the product at its primary image, falls back to the
// placeholder image and appends the variant images.
func (e *Engine) resolveImage(doc Document, bc *buildContext) Document {
	// The generator sets image to false when there is none.
	if v, ok := doc["image"].(bool); ok && !v {
		delete(doc, "image")
	}

	switch {
	case bc.product.HasFeaturedImage():
		doc["image"] = Ref(bc.page.Canonical + primaryImageHash)
	case e.settings.PlaceholderImageURL != "":
		doc["image"] = imageObject(bc.page.Canonical+placeholderImageHash, e.settings.PlaceholderImageURL, "")
	}

	if len(bc.variantImages) == 0 {
		return doc
	}

	images := make([]interface{}, 0, len(bc.variantImages)+1)
	if main, ok := doc["image"]; ok && main != nil {
		images = append(images, main)
	}
	seen := make(map[string]bool, len(bc.variantImages))
	for _, ref := range bc.variantImages {
		if seen[ref.ID()] {
			continue
		}
		seen[ref.ID()] = true
		images = append(images, ref)
	}
	doc["image"] = images

	return doc
}

// imageObject returns an ImageObject node for url.
func imageObject(id, url, caption string) Document {
	image := Document{
		"@type":      "ImageObject",
		"@id":        id,
		"url":        url,
		"contentUrl": url,
	}
	if caption != "" {
		image["caption"] = caption
	}
	return image
}
