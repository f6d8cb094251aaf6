// Package language normalizes language codes and preference lists. Caption
// tracks carry full BCP-47 tags (en-US, pt-BR) while detectors report ISO
// 639-3 codes; this package bridges both to comparable forms.
package language
